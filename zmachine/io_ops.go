package zmachine

import "github.com/tlgreaves/grue/zerr"

func (z *Interpreter) zSplitWindow() {
	z.flushBuffer()
	z.model.UpperWindowHeight = int(z.zargs[0])
	z.screen.SplitWindow(z.zargs[0])
}

func (z *Interpreter) zSetWindow() {
	z.flushBuffer()
	window := int(z.zargs[0])
	if window != LowerWindow && window != UpperWindow {
		z.Errors.Runtime(zerr.ErrIllWin, z.instructionPC)
		return
	}
	z.model.CurrentWindow = window
	if window == UpperWindow {
		z.model.CursorRow = 1
		z.model.CursorCol = 1
	}
	z.screen.SetWindow(z.zargs[0])
}

func (z *Interpreter) zSetCursor() {
	z.flushBuffer()
	if z.model.CurrentWindow == UpperWindow {
		z.model.CursorRow = int(z.zargs[0])
		z.model.CursorCol = int(z.zargs[1])
	}
	z.screen.SetCursor(z.zargs[0], z.zargs[1])
}

// zGetCursor writes the cursor position into a two word table.
func (z *Interpreter) zGetCursor() {
	z.flushBuffer()
	z.storew(uint32(z.zargs[0]), uint16(z.model.CursorRow))
	z.storew(uint32(z.zargs[0])+2, uint16(z.model.CursorCol))
}

func (z *Interpreter) zEraseWindow() {
	z.flushBuffer()
	window := int16(z.zargs[0])
	if window == -1 {
		// Unsplit and clear the whole screen
		z.model.UpperWindowHeight = 0
		z.model.CurrentWindow = LowerWindow
	}
	z.screen.EraseWindow(window)
}

func (z *Interpreter) zEraseLine() {
	z.flushBuffer()
	z.screen.EraseLine(z.zargs[0])
}

func (z *Interpreter) zSetTextStyle() {
	z.flushBuffer()
	if z.zargs[0] == 0 {
		z.model.CurrentStyle = Roman
	} else {
		z.model.CurrentStyle |= TextStyle(z.zargs[0])
	}
	z.screen.SetTextStyle(z.zargs[0])
}

func (z *Interpreter) zSetColour() {
	z.flushBuffer()
	z.model.Foreground = z.zargs[0]
	z.model.Background = z.zargs[1]
	z.screen.SetColour(z.zargs[0], z.zargs[1])
}

// zSetFont stores the previous font on success, 0 when the presenter can't
// provide the requested one. Font 0 just queries the current font.
func (z *Interpreter) zSetFont() {
	z.flushBuffer()
	if z.zargs[0] == 0 {
		z.store(z.model.CurrentFont)
		return
	}

	previous := z.model.CurrentFont
	if z.screen.SetFont(z.zargs[0]) == 0 {
		z.store(0)
		return
	}
	z.model.CurrentFont = z.zargs[0]
	z.store(previous)
}

// zBufferMode turns word wrapping on and off. Turning it off flushes
// whatever is pending first.
func (z *Interpreter) zBufferMode() {
	if z.zargs[0] == 0 {
		z.flushBuffer()
		z.enableBuffering = false
	} else {
		z.enableBuffering = true
	}
	z.screen.BufferMode(z.zargs[0])
}

// zOutputStream selects or deselects an output stream. Positive numbers
// select, negative deselect; stream 3 carries a table address and nests.
func (z *Interpreter) zOutputStream() {
	z.flushBuffer()

	switch int16(z.zargs[0]) {
	case 1:
		z.streams.Screen = true
	case -1:
		z.streams.Screen = false
	case 2:
		if !z.streams.Transcript {
			z.scriptOpen()
		}
	case -2:
		if z.streams.Transcript {
			z.scriptClose()
		}
	case 3:
		buffering := true
		xsize := uint16(0)
		if z.zargc > 2 {
			xsize = z.zargs[2]
		} else {
			buffering = false
		}
		z.memoryOpen(z.zargs[1], xsize, buffering)
	case -3:
		z.memoryClose()
	case 4:
		z.streams.CommandScript = true
	case -4:
		z.streams.CommandScript = false
	}
}

// zInputStream would switch to command playback; only the keyboard stream
// exists here, so this is a no-op.
func (z *Interpreter) zInputStream() {
}

func (z *Interpreter) zSoundEffect() {
	number := uint16(1)
	effect := uint16(2)
	volume := uint16(8)
	if z.zargc > 0 {
		number = z.zargs[0]
	}
	if z.zargc > 1 {
		effect = z.zargs[1]
	}
	if z.zargc > 2 {
		volume = z.zargs[2]
	}
	z.screen.SoundEffect(number, effect, volume)
}

func (z *Interpreter) zDrawPicture()  {}
func (z *Interpreter) zErasePicture() {}
func (z *Interpreter) zSetMargins()   {}

// zPictureData branches false: no picture file is ever available.
func (z *Interpreter) zPictureData() {
	z.branch(false)
}

func (z *Interpreter) zGetWindProp() {
	z.Errors.Runtime(zerr.ErrIllWinProp, z.instructionPC)
	z.store(0)
}

func (z *Interpreter) zRestart() {
	z.restart()
}

// zSave serialises the machine state through the embedder's save handler.
// With operands it instead dumps a raw memory region (an "auxiliary" save).
// V1-3 branches on success, V4+ stores a result.
func (z *Interpreter) zSave() {
	success := uint16(0)

	if z.zargc != 0 {
		region := z.Core.ReadSlice(uint32(z.zargs[0]), uint32(z.zargs[0]+z.zargs[1]))
		data := make([]byte, len(region))
		copy(data, region)
		if z.SaveHandler != nil && z.SaveHandler(data) {
			success = 1
		}
	} else {
		data := z.SaveQuetzal()
		if z.SaveHandler != nil && z.SaveHandler(data) {
			success = 1
		}
	}

	if z.Core.Version <= 3 {
		z.branch(success != 0)
	} else {
		z.store(success)
	}
}

// zRestore pulls a snapshot back from the embedder. On success the restored
// PC points at the save opcode's result byte, so the store below reports 2
// "through" the original save instruction.
func (z *Interpreter) zRestore() {
	success := uint16(0)

	if z.zargc != 0 {
		if z.RestoreHandler != nil {
			if data := z.RestoreHandler(); data != nil {
				n := len(data)
				if n > int(z.zargs[1]) {
					n = int(z.zargs[1])
				}
				for i := 0; i < n; i++ {
					z.storeb(uint32(z.zargs[0])+uint32(i), data[i])
				}
				success = uint16(n)
			}
		}
	} else if z.RestoreHandler != nil {
		if data := z.RestoreHandler(); data != nil {
			result := z.RestoreQuetzal(data)
			if result > 0 {
				success = uint16(result)
				z.afterRestore()
			} else if result < 0 {
				z.screen.Fatal("Error reading save file")
				return
			}
		}
	}

	if z.Core.Version <= 3 {
		z.branch(success != 0)
	} else {
		z.store(success)
	}
}

// afterRestore patches up interpreter-owned state that a foreign save file
// must not override.
func (z *Interpreter) afterRestore() {
	if z.Core.Version == 3 {
		z.model.UpperWindowHeight = 0
		z.screen.SplitWindow(0)
	}

	oldScreenRows := z.Core.ReadByte(0x20)
	oldScreenCols := z.Core.ReadByte(0x21)

	z.Core.RestartHeader()

	// Saves travel between machines with very different screens; erasing
	// the status window covers up most of the resulting badness.
	if z.Core.Version > 3 && z.Core.Version != 6 &&
		(z.Core.ScreenRows != oldScreenRows || z.Core.ScreenCols != oldScreenCols) {
		z.screen.EraseWindow(UpperWindow)
	}
}

func (z *Interpreter) zSaveUndo() {
	z.store(uint16(z.saveUndo()))
}

func (z *Interpreter) zRestoreUndo() {
	z.store(uint16(z.restoreUndo()))
}

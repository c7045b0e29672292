package zmachine

import (
	"github.com/tlgreaves/grue/zcore"
	"github.com/tlgreaves/grue/zerr"
	"github.com/tlgreaves/grue/zstring"
)

// streamChar fans one ZSCII character out to the live sinks. While stream 3
// is open it swallows everything: no other selected stream sees the text,
// though they all stay selected (section 7.1.2.2).
func (z *Interpreter) streamChar(c uint8) {
	if len(z.streams.Memory) > 0 {
		z.memoryChar(c)
		return
	}

	r := zstring.ZsciiToRune(c, &z.Core)
	if r == 0 {
		return
	}

	if z.streams.Screen {
		z.screen.DisplayChar(r)
		if z.model.CurrentWindow == LowerWindow {
			z.screenText = append(z.screenText, r)
		} else {
			z.model.CursorCol++
		}
	}

	if z.streams.Transcript && z.model.CurrentWindow == LowerWindow {
		z.transcript = append(z.transcript, r)
	}
}

// streamWord sends one buffered word at a time, so presenters that wrap
// text see whole words rather than single characters.
func (z *Interpreter) streamWord(word []uint8) {
	if len(z.streams.Memory) > 0 {
		for _, c := range word {
			z.memoryChar(c)
		}
		return
	}

	runes := make([]rune, 0, len(word))
	for _, c := range word {
		if r := zstring.ZsciiToRune(c, &z.Core); r != 0 {
			runes = append(runes, r)
		}
	}
	s := string(runes)

	if z.streams.Screen {
		z.screen.DisplayString(s)
		if z.model.CurrentWindow == LowerWindow {
			z.screenText = append(z.screenText, runes...)
		} else {
			z.model.CursorCol += len(runes)
		}
	}

	if z.streams.Transcript && z.model.CurrentWindow == LowerWindow {
		z.transcript = append(z.transcript, runes...)
	}
}

func (z *Interpreter) streamNewLine() {
	if len(z.streams.Memory) > 0 {
		z.memoryChar(zcReturn)
		return
	}

	if z.streams.Screen {
		z.screen.DisplayChar('\n')
		if z.model.CurrentWindow == LowerWindow {
			z.screenText = append(z.screenText, '\n')
		} else {
			z.model.CursorRow++
			z.model.CursorCol = 1
		}
	}

	if z.streams.Transcript && z.model.CurrentWindow == LowerWindow {
		z.transcript = append(z.transcript, '\n')
	}
}

// recordInput appends a player command to the command record stream.
func (z *Interpreter) recordInput(line string) {
	if z.streams.CommandScript {
		z.commandLog = append(z.commandLog, []rune(line+"\n")...)
	}
}

// TakeCommandLog drains the command record stream.
func (z *Interpreter) TakeCommandLog() string {
	out := string(z.commandLog)
	z.commandLog = z.commandLog[:0]
	return out
}

// memoryOpen pushes a level of stream 3 redirection. The table starts with
// a length word which is maintained as characters arrive.
func (z *Interpreter) memoryOpen(table uint16, xsize uint16, buffering bool) {
	if len(z.streams.Memory) >= maxNesting {
		z.Errors.Runtime(zerr.ErrStr3Nesting, z.instructionPC)
		return
	}

	if !buffering {
		xsize = 0xffff
	} else if int16(xsize) < 0 {
		xsize = uint16(-int16(xsize))
	}

	z.storew(uint32(table), 0)
	z.streams.Memory = append(z.streams.Memory, MemoryStream{table: table, xsize: xsize})
}

func (z *Interpreter) memoryChar(c uint8) {
	stream := &z.streams.Memory[len(z.streams.Memory)-1]
	size := z.Core.ReadWord(uint32(stream.table))
	z.storeb(uint32(stream.table)+2+uint32(size), c)
	z.storew(uint32(stream.table), size+1)
}

func (z *Interpreter) memoryClose() {
	if len(z.streams.Memory) == 0 {
		return
	}
	z.streams.Memory = z.streams.Memory[:len(z.streams.Memory)-1]
}

// scriptOpen starts the transcript stream and advertises it in the header
// flags so the story knows scripting is on.
func (z *Interpreter) scriptOpen() {
	z.streams.Transcript = true
	z.Core.Flags |= zcore.ScriptingFlag
	z.Core.WriteWord(zcore.HFlags, z.Core.Flags)
}

func (z *Interpreter) scriptClose() {
	z.streams.Transcript = false
	z.Core.Flags &^= zcore.ScriptingFlag
	z.Core.WriteWord(zcore.HFlags, z.Core.Flags)
}

// Package zmachine implements the Z-code interpreter itself: the value
// stack and call frames, opcode dispatch, output buffering and streams,
// the save formats and the per-step world diff instrumentation.
package zmachine

import (
	"github.com/tlgreaves/grue/dictionary"
	"github.com/tlgreaves/grue/zcore"
	"github.com/tlgreaves/grue/zerr"
	"github.com/tlgreaves/grue/zstring"
)

const (
	// StackSize is the capacity of the value stack in words.
	StackSize = 1024

	textBufferSize = 275
	maxNesting     = 16
	diffRingSize   = 16
)

// Input opcode bytes. The step loop suspends only on line input (read);
// read_char never suspends and takes queued bytes or asks the presenter.
const (
	opcodeRead     = 0xe4
	opcodeReadChar = 0xf6
)

// StopReason reports why a run loop returned.
type StopReason int

const (
	WaitingForInput StopReason = iota
	Quit
	Stalled
)

type opcodeFn func(*Interpreter)

// MemoryStream is one level of the output stream 3 redirection stack.
type MemoryStream struct {
	table uint16
	xsize uint16
}

// Streams tracks which output sinks are live. Stream 3 is a stack: while it
// has any level open, no other stream receives output.
type Streams struct {
	Screen        bool
	Transcript    bool
	Memory        []MemoryStream
	CommandScript bool
}

// A DiffEntry records one observed object mutation: a move destination or
// an attribute index.
type DiffEntry struct {
	Object uint16
	Value  uint16
}

// WorldDiff holds the object mutations recorded since the last clear, at
// most diffRingSize of each kind, in instruction order.
type WorldDiff struct {
	Moves      []DiffEntry
	AttrSets   []DiffEntry
	AttrClears []DiffEntry
}

// Interpreter is the whole machine. The original design kept all of this in
// process globals; here it is one value, and the host layer enforces the
// single active instance the design assumes.
type Interpreter struct {
	Core       zcore.Core
	Alphabets  *zstring.Alphabets
	Dictionary *dictionary.Dictionary
	Errors     zerr.Reporter

	stack         [StackSize]uint16
	sp            int // index of the top element; StackSize when empty
	fp            int // index of the current frame's header word
	frameCount    uint16
	pc            uint32
	instructionPC uint32 // address of the opcode currently executing

	zargs [8]uint16
	zargc int

	finished int

	op0Opcodes [0x10]opcodeFn
	op1Opcodes [0x10]opcodeFn
	varOpcodes [0x40]opcodeFn
	extOpcodes [0x1d]opcodeFn

	rng randomState

	streams         Streams
	enableBuffering bool
	buffer          [textBufferSize]uint8
	bufpos          int
	prevC           uint8
	flushLocked     bool

	screen     Screen
	screenText []rune
	transcript []rune
	commandLog []rune

	model ScreenModel

	// Pending input supplied by the host, consumed by the read opcodes.
	pendingInput    []uint8
	hasPendingInput bool

	// StripInput removes trailing question marks from player commands
	// before tokenising, which the Infocom-era parsers choke on.
	StripInput bool

	// SaveHandler and RestoreHandler let the embedder decide where guest
	// initiated saves go. Nil handlers make the opcodes report failure.
	SaveHandler    func(data []byte) bool
	RestoreHandler func() []byte

	moveDiff []DiffEntry
	attrDiff []DiffEntry
	attrClr  []DiffEntry

	undo undoRing
}

// LoadStory builds an interpreter around a story image. The screen may be
// nil, in which case output is only captured internally.
func LoadStory(storyFile []uint8, screen Screen) (*Interpreter, error) {
	core, err := zcore.LoadCore(storyFile)
	if err != nil {
		return nil, err
	}

	if screen == nil {
		screen = NullScreen{}
	}

	z := &Interpreter{
		Core:            core,
		screen:          screen,
		enableBuffering: true,
		streams:         Streams{Screen: true},
		model:           newScreenModel(),
	}

	z.Alphabets = zstring.LoadAlphabets(&z.Core)
	z.Dictionary = dictionary.ParseDictionary(uint32(z.Core.DictionaryBase), &z.Core, z.Alphabets)

	z.Errors = zerr.Reporter{
		Mode:  zerr.ReportOnce,
		Print: func(s string) { z.printString(s) },
		Fatal: func(s string) { z.screen.Fatal(s) },
	}

	z.installOpcodeTables()
	z.restart()

	return z, nil
}

// restart puts the machine into its boot state: pristine dynamic memory, an
// empty stack and the PC at the first instruction.
func (z *Interpreter) restart() {
	z.flushBuffer()
	z.screen.RestartGame(RestartBegin)

	z.rng.seed(0)

	z.Core.RewindDynamic()
	z.Core.RestartHeader()
	z.model = newScreenModel()

	z.sp = StackSize
	z.fp = StackSize
	z.frameCount = 0
	z.finished = 0

	if z.Core.Version != 6 {
		z.pc = uint32(z.Core.FirstInstruction)
	} else {
		z.callRoutine(z.Core.FirstInstruction, 0, nil, callProcedure)
	}

	z.screen.RestartGame(RestartEnd)
}

func (z *Interpreter) codeByte() uint8 {
	v := z.Core.ReadByte(z.pc)
	z.pc++
	return v
}

func (z *Interpreter) codeWord() uint16 {
	v := z.Core.ReadWord(z.pc)
	z.pc += 2
	return v
}

// PC returns the current program counter.
func (z *Interpreter) PC() uint32 { return z.pc }

// ZArgs returns the operands of the most recently decoded instruction.
func (z *Interpreter) ZArgs() [8]uint16 { return z.zargs }

// StackWords copies out the whole value stack.
func (z *Interpreter) StackWords() [StackSize]uint16 { return z.stack }

// storeb writes a guest byte, enforcing the dynamic memory boundary. The
// low flags byte is special: the guest may only toggle the scripting and
// fixed font bits, and flipping the scripting bit opens or closes the
// transcript stream.
func (z *Interpreter) storeb(addr uint32, value uint8) {
	if addr >= uint32(z.Core.DynamicSize) {
		z.Errors.Runtime(zerr.ErrStoreRange, z.instructionPC)
		return
	}

	if addr == zcore.HFlags+1 {
		z.Core.Flags &^= zcore.ScriptingFlag | zcore.FixedFontFlag
		z.Core.Flags |= uint16(value) & (zcore.ScriptingFlag | zcore.FixedFontFlag)

		if value&zcore.ScriptingFlag != 0 {
			if !z.streams.Transcript {
				z.scriptOpen()
			}
		} else {
			if z.streams.Transcript {
				z.scriptClose()
			}
		}

		z.screen.SetTextStyle(uint16(z.model.CurrentStyle))
	}

	z.Core.WriteByte(addr, value)
}

func (z *Interpreter) storew(addr uint32, value uint16) {
	z.storeb(addr, uint8(value>>8))
	z.storeb(addr+1, uint8(value))
}

// readVariable reads variable 0..255: the stack top, a local or a global.
// Indirect references (inc, dec, load, store, pull and friends) access the
// stack top in place rather than popping.
func (z *Interpreter) readVariable(variable uint8, indirect bool) uint16 {
	switch {
	case variable == 0:
		if indirect {
			return z.stackPeek()
		}
		return z.stackPop()
	case variable < 16:
		return z.stack[z.fp-int(variable)]
	default:
		return z.Core.ReadWord(uint32(z.Core.GlobalVariableBase) + 2*(uint32(variable)-16))
	}
}

func (z *Interpreter) writeVariable(variable uint8, value uint16, indirect bool) {
	switch {
	case variable == 0:
		if indirect {
			z.stackPoke(value)
		} else {
			z.stackPush(value)
		}
	case variable < 16:
		z.stack[z.fp-int(variable)] = value
	default:
		z.storew(uint32(z.Core.GlobalVariableBase)+2*(uint32(variable)-16), value)
	}
}

// store places an opcode result according to the store byte that follows
// the instruction.
func (z *Interpreter) store(value uint16) {
	z.writeVariable(z.codeByte(), value, false)
}

// RunToInput executes instructions until the PC reaches a read opcode with
// no host input queued, the story quits, or the instruction budget runs
// out. The read opcode itself is left unexecuted so a snapshot taken here
// resumes cleanly.
func (z *Interpreter) RunToInput(limit int) StopReason {
	for i := 0; limit <= 0 || i < limit; i++ {
		if z.finished > 0 {
			return Quit
		}

		// Only line input suspends; read_char falls through to the
		// presenter (or eats queued bytes) the way the terminal-less
		// interpreters always ran "press any key" prompts.
		opcode := z.Core.ReadByte(z.pc)
		if opcode == opcodeRead && !z.hasPendingInput {
			z.flushBuffer()
			return WaitingForInput
		}

		z.instructionPC = z.pc
		z.pc++
		z.runOpcode(opcode)
	}

	return Stalled
}

// SetNextInput queues one line of player input (without its terminating
// newline) for the next read opcode.
func (z *Interpreter) SetNextInput(line string) {
	zscii := make([]uint8, 0, len(line))
	for _, r := range line {
		if c, ok := zstring.RuneToZscii(r, &z.Core); ok && c != 13 {
			zscii = append(zscii, c)
		}
	}
	z.pendingInput = zscii
	z.hasPendingInput = true
}

// TakeOutput drains the screen text captured since the previous call.
func (z *Interpreter) TakeOutput() string {
	z.flushBuffer()
	out := string(z.screenText)
	z.screenText = z.screenText[:0]
	return out
}

// TakeTranscript drains the transcript stream.
func (z *Interpreter) TakeTranscript() string {
	out := string(z.transcript)
	z.transcript = z.transcript[:0]
	return out
}

// ClearWorldDiff resets the per-step mutation rings.
func (z *Interpreter) ClearWorldDiff() {
	z.moveDiff = z.moveDiff[:0]
	z.attrDiff = z.attrDiff[:0]
	z.attrClr = z.attrClr[:0]
}

// WorldDiff returns the mutations recorded since the last clear.
func (z *Interpreter) WorldDiff() WorldDiff {
	return WorldDiff{
		Moves:      append([]DiffEntry(nil), z.moveDiff...),
		AttrSets:   append([]DiffEntry(nil), z.attrDiff...),
		AttrClears: append([]DiffEntry(nil), z.attrClr...),
	}
}

func (z *Interpreter) recordMove(obj uint16, dest uint16) {
	if len(z.moveDiff) < diffRingSize {
		z.moveDiff = append(z.moveDiff, DiffEntry{obj, dest})
	}
}

func (z *Interpreter) recordAttrSet(obj uint16, attr uint16) {
	if len(z.attrDiff) < diffRingSize {
		z.attrDiff = append(z.attrDiff, DiffEntry{obj, attr})
	}
}

func (z *Interpreter) recordAttrClear(obj uint16, attr uint16) {
	if len(z.attrClr) < diffRingSize {
		z.attrClr = append(z.attrClr, DiffEntry{obj, attr})
	}
}

// SeedRandom puts the generator into a deterministic state for reproducible
// runs. Seed 0 asks the host clock instead.
func (z *Interpreter) SeedRandom(seed int) {
	if seed == 0 {
		z.rng.seed(0)
	} else {
		z.rng.a = int64(seed)
		z.rng.interval = 0
	}
}

// InitUndo takes the dynamic memory reference snapshot the undo diffs are
// chained against. Slot count 0 disables the undo opcodes.
func (z *Interpreter) InitUndo(slots int) {
	z.undo.init(slots, z.Core.DynamicMemory())
}

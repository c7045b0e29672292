package zcore

import (
	"encoding/binary"
	"fmt"
)

// Header field addresses. Multi-byte fields are big-endian.
const (
	HVersion            = 0x00
	HConfig             = 0x01
	HRelease            = 0x02
	HResidentSize       = 0x04
	HStartPC            = 0x06
	HDictionary         = 0x08
	HObjects            = 0x0a
	HGlobals            = 0x0c
	HDynamicSize        = 0x0e
	HFlags              = 0x10
	HSerial             = 0x12
	HAbbreviations      = 0x18
	HFileSize           = 0x1a
	HChecksum           = 0x1c
	HInterpreterNumber  = 0x1e
	HInterpreterVersion = 0x1f
	HScreenRows         = 0x20
	HScreenCols         = 0x21
	HScreenWidth        = 0x22
	HScreenHeight       = 0x24
	HFontHeight         = 0x26
	HFontWidth          = 0x27
	HFunctionsOffset    = 0x28
	HStringsOffset      = 0x2a
	HDefaultBackground  = 0x2c
	HDefaultForeground  = 0x2d
	HTerminatingKeys    = 0x2e
	HLineWidth          = 0x30
	HStandardHigh       = 0x32
	HStandardLow        = 0x33
	HAlphabet           = 0x34
	HExtensionTable     = 0x36
	HUserName           = 0x38
)

// Header extension table entries.
const (
	HxTableSize    = 0
	HxMouseX       = 1
	HxMouseY       = 2
	HxUnicodeTable = 3
)

// Config byte capability bits, V1-3.
const (
	ConfigByteSwapped  = 0x01
	ConfigTime         = 0x02
	ConfigTwoDisks     = 0x04
	ConfigTandy        = 0x08
	ConfigNoStatusLine = 0x10
	ConfigSplitScreen  = 0x20
	ConfigProportional = 0x40
)

// Config byte capability bits, V4+.
const (
	ConfigColour     = 0x01
	ConfigPictures   = 0x02
	ConfigBoldface   = 0x04
	ConfigEmphasis   = 0x08
	ConfigFixed      = 0x10
	ConfigSound      = 0x20
	ConfigTimedInput = 0x80
)

// Flags word bits.
const (
	ScriptingFlag = 0x0001
	FixedFontFlag = 0x0002
	RefreshFlag   = 0x0004
	GraphicsFlag  = 0x0008
	UndoFlag      = 0x0010
	MouseFlag     = 0x0020
	ColourFlag    = 0x0040
	SoundFlag     = 0x0080
	MenuFlag      = 0x0100
)

const (
	InterpreterNumberMSDOS = 6
	interpreterVersion     = 'F'
)

// Core owns the story image plus a cached copy of the header fields.
// The pristine file bytes are retained separately: restart, verify and the
// compressed save format all need the original story bytes.
type Core struct {
	mem      []uint8
	original []uint8

	Version               uint8
	Config                uint8
	ReleaseNumber         uint16
	ResidentSize          uint16
	FirstInstruction      uint16
	DictionaryBase        uint16
	ObjectTableBase       uint16
	GlobalVariableBase    uint16
	DynamicSize           uint16
	Flags                 uint16
	Serial                [6]uint8
	AbbreviationTableBase uint16
	FileChecksum          uint16
	InterpreterNumber     uint8
	ScreenRows            uint8
	ScreenCols            uint8
	RoutinesOffset        uint16
	StringsOffset         uint16
	DefaultBackground     uint8
	DefaultForeground     uint8
	TerminatingKeysBase   uint16
	AlphabetTableBase     uint16
	ExtensionTableBase    uint16
	ExtensionTableSize    uint16
	UnicodeTableBase      uint16
	StatusBarTimeBased    bool

	StorySize uint32
	StoryID   Story
}

// LoadCore parses the 64 byte header, sizes memory from the file-size field
// (falling back to the file length for early games that leave it zero) and
// identifies the story for quirk workarounds.
func LoadCore(storyFile []uint8) (Core, error) {
	if len(storyFile) < 64 {
		return Core{}, fmt.Errorf("story file too small for a header (%d bytes)", len(storyFile))
	}

	version := storyFile[HVersion]
	if version < 1 || version > 8 {
		return Core{}, fmt.Errorf("unknown z-code version %d", version)
	}

	config := storyFile[HConfig]
	if version == 3 && config&ConfigByteSwapped != 0 {
		return Core{}, fmt.Errorf("byte swapped story file")
	}

	fileSizeWords := binary.BigEndian.Uint16(storyFile[HFileSize : HFileSize+2])
	storySize := uint32(fileSizeWords) * 2
	switch {
	case version >= 6:
		storySize *= 4
	case version >= 4:
		storySize *= 2
	}
	if fileSizeWords == 0 {
		// Some old games lack the file size entry.
		storySize = uint32(len(storyFile))
	}

	mem := make([]uint8, storySize)
	copy(mem, storyFile)
	original := make([]uint8, storySize)
	copy(original, mem)

	core := Core{
		mem:      mem,
		original: original,

		Version:               version,
		Config:                config,
		ReleaseNumber:         binary.BigEndian.Uint16(storyFile[HRelease : HRelease+2]),
		ResidentSize:          binary.BigEndian.Uint16(storyFile[HResidentSize : HResidentSize+2]),
		FirstInstruction:      binary.BigEndian.Uint16(storyFile[HStartPC : HStartPC+2]),
		DictionaryBase:        binary.BigEndian.Uint16(storyFile[HDictionary : HDictionary+2]),
		ObjectTableBase:       binary.BigEndian.Uint16(storyFile[HObjects : HObjects+2]),
		GlobalVariableBase:    binary.BigEndian.Uint16(storyFile[HGlobals : HGlobals+2]),
		DynamicSize:           binary.BigEndian.Uint16(storyFile[HDynamicSize : HDynamicSize+2]),
		Flags:                 binary.BigEndian.Uint16(storyFile[HFlags : HFlags+2]),
		AbbreviationTableBase: binary.BigEndian.Uint16(storyFile[HAbbreviations : HAbbreviations+2]),
		FileChecksum:          binary.BigEndian.Uint16(storyFile[HChecksum : HChecksum+2]),
		RoutinesOffset:        binary.BigEndian.Uint16(storyFile[HFunctionsOffset : HFunctionsOffset+2]),
		StringsOffset:         binary.BigEndian.Uint16(storyFile[HStringsOffset : HStringsOffset+2]),
		TerminatingKeysBase:   binary.BigEndian.Uint16(storyFile[HTerminatingKeys : HTerminatingKeys+2]),
		AlphabetTableBase:     binary.BigEndian.Uint16(storyFile[HAlphabet : HAlphabet+2]),
		ExtensionTableBase:    binary.BigEndian.Uint16(storyFile[HExtensionTable : HExtensionTable+2]),
		StatusBarTimeBased:    config&ConfigTime != 0,
		StorySize:             storySize,
		InterpreterNumber:     InterpreterNumberMSDOS,
		ScreenRows:            25,
		ScreenCols:            80,
		DefaultBackground:     2, // black
		DefaultForeground:     9, // white
	}

	copy(core.Serial[:], storyFile[HSerial:HSerial+6])

	core.StoryID = identifyStory(core.ReleaseNumber, core.Serial)

	// The Macintosh release of Zork Zero shipped without the graphics flag
	if core.StoryID == ZorkZero && core.ReleaseNumber == 296 {
		core.Flags |= GraphicsFlag
	}

	if core.ExtensionTableBase != 0 {
		core.ExtensionTableSize = core.ReadWord(uint32(core.ExtensionTableBase))
		core.UnicodeTableBase = core.HeaderExtension(HxUnicodeTable)
	}

	return core, nil
}

// Unpack converts a packed routine or string address to a byte address.
func (core *Core) Unpack(packed uint16, isString bool) uint32 {
	switch {
	case core.Version <= 3:
		return uint32(packed) << 1
	case core.Version <= 5:
		return uint32(packed) << 2
	case core.Version <= 7:
		offset := core.RoutinesOffset
		if isString {
			offset = core.StringsOffset
		}
		return uint32(packed)<<2 + uint32(offset)<<3
	default: // V8
		return uint32(packed) << 3
	}
}

func (core *Core) ReadByte(address uint32) uint8 {
	return core.mem[address]
}

func (core *Core) ReadWord(address uint32) uint16 {
	return binary.BigEndian.Uint16(core.mem[address : address+2])
}

func (core *Core) ReadSlice(startAddress uint32, endAddress uint32) []uint8 {
	return core.mem[startAddress:endAddress]
}

// WriteByte writes without any range checking. Guest stores go through the
// interpreter which enforces the dynamic memory boundary first.
func (core *Core) WriteByte(address uint32, value uint8) {
	core.mem[address] = value
}

func (core *Core) WriteWord(address uint32, value uint16) {
	binary.BigEndian.PutUint16(core.mem[address:address+2], value)
}

func (core *Core) MemoryLength() uint32 {
	return uint32(len(core.mem))
}

// DynamicMemory returns the live writable region.
func (core *Core) DynamicMemory() []uint8 {
	return core.mem[:core.DynamicSize]
}

// OriginalByte reads from the pristine story image.
func (core *Core) OriginalByte(address uint32) uint8 {
	return core.original[address]
}

func (core *Core) OriginalDynamic() []uint8 {
	return core.original[:core.DynamicSize]
}

// RewindDynamic copies the pristine dynamic area back over live memory, as
// used by restart and as the base state for applying a compressed save.
func (core *Core) RewindDynamic() {
	copy(core.mem[:core.DynamicSize], core.original[:core.DynamicSize])
}

// ComputeChecksum sums every byte of the pristine image after the header.
func (core *Core) ComputeChecksum() uint16 {
	checksum := uint16(0)
	for i := uint32(64); i < core.StorySize; i++ {
		checksum += uint16(core.original[i])
	}
	return checksum
}

// HeaderExtension reads a value from the header extension (former mouse
// table). Returns 0 when there is no table or the entry is out of range.
func (core *Core) HeaderExtension(entry uint16) uint16 {
	if core.ExtensionTableBase == 0 || entry > core.ExtensionTableSize {
		return 0
	}
	return core.ReadWord(uint32(core.ExtensionTableBase + 2*entry))
}

func (core *Core) SetHeaderExtension(entry uint16, value uint16) {
	if core.ExtensionTableBase == 0 || entry > core.ExtensionTableSize {
		return
	}
	core.WriteWord(uint32(core.ExtensionTableBase+2*entry), value)
}

// RestartHeader rewrites every header field that describes the interpreter
// rather than the story. Called on load, after restart and after restoring a
// save, so that the story keeps seeing this interpreter's capabilities no
// matter where the save file came from.
func (core *Core) RestartHeader() {
	if core.Version <= 3 {
		core.Config |= ConfigSplitScreen
		core.Config &^= ConfigNoStatusLine
	} else {
		core.Config |= ConfigColour | ConfigBoldface | ConfigEmphasis | ConfigFixed
		core.Config &^= ConfigPictures | ConfigSound | ConfigTimedInput
	}

	core.WriteByte(HConfig, core.Config)
	core.WriteWord(HFlags, core.Flags)

	if core.Version >= 4 {
		core.WriteByte(HInterpreterNumber, core.InterpreterNumber)
		core.WriteByte(HInterpreterVersion, interpreterVersion)
		core.WriteByte(HScreenRows, core.ScreenRows)
		core.WriteByte(HScreenCols, core.ScreenCols)
	}

	if core.Version >= 5 {
		// Font size 1x1 keeps unit and character coordinates identical,
		// which also dodges a layout bug in the German "Zork 1" beta.
		core.WriteWord(HScreenWidth, uint16(core.ScreenCols))
		core.WriteWord(HScreenHeight, uint16(core.ScreenRows))
		core.WriteByte(HFontHeight, 1)
		core.WriteByte(HFontWidth, 1)
		core.WriteByte(HDefaultBackground, core.DefaultBackground)
		core.WriteByte(HDefaultForeground, core.DefaultForeground)
	}

	core.WriteByte(HStandardHigh, 1)
	core.WriteByte(HStandardLow, 1)
}

package zcore

import (
	"encoding/binary"
	"testing"
)

func makeHeader(version uint8) []uint8 {
	mem := make([]uint8, 0x800)
	mem[HVersion] = version
	binary.BigEndian.PutUint16(mem[HRelease:], 88)
	binary.BigEndian.PutUint16(mem[HStartPC:], 0x0600)
	binary.BigEndian.PutUint16(mem[HDictionary:], 0x0500)
	binary.BigEndian.PutUint16(mem[HObjects:], 0x0200)
	binary.BigEndian.PutUint16(mem[HGlobals:], 0x0040)
	binary.BigEndian.PutUint16(mem[HDynamicSize:], 0x0600)
	copy(mem[HSerial:], "840726")
	return mem
}

func TestLoadCoreCachesHeader(t *testing.T) {
	core, err := LoadCore(makeHeader(3))
	if err != nil {
		t.Fatal(err)
	}

	if core.Version != 3 {
		t.Errorf("version = %d", core.Version)
	}
	if core.ReleaseNumber != 88 {
		t.Errorf("release = %d", core.ReleaseNumber)
	}
	if core.FirstInstruction != 0x0600 {
		t.Errorf("start pc = %#x", core.FirstInstruction)
	}
	if core.DictionaryBase != 0x0500 || core.ObjectTableBase != 0x0200 ||
		core.GlobalVariableBase != 0x0040 || core.DynamicSize != 0x0600 {
		t.Error("table pointers not cached")
	}
	if string(core.Serial[:]) != "840726" {
		t.Errorf("serial = %q", core.Serial)
	}
	if core.StorySize != 0x800 {
		t.Errorf("story size = %d (file size field unset, should use file length)", core.StorySize)
	}
}

func TestLoadCoreRejectsBadVersions(t *testing.T) {
	for _, version := range []uint8{0, 9, 200} {
		mem := makeHeader(3)
		mem[HVersion] = version
		if _, err := LoadCore(mem); err == nil {
			t.Errorf("version %d accepted", version)
		}
	}

	if _, err := LoadCore(make([]uint8, 32)); err == nil {
		t.Error("truncated header accepted")
	}
}

func TestFileSizeScaling(t *testing.T) {
	tests := []struct {
		version uint8
		words   uint16
		want    uint32
	}{
		{3, 0x0400, 0x0800},
		{5, 0x0400, 0x1000},
		{8, 0x0400, 0x2000},
	}

	for _, tt := range tests {
		mem := makeHeader(tt.version)
		binary.BigEndian.PutUint16(mem[HFileSize:], tt.words)
		core, err := LoadCore(mem)
		if err != nil {
			t.Fatal(err)
		}
		if core.StorySize != tt.want {
			t.Errorf("v%d size = %#x, want %#x", tt.version, core.StorySize, tt.want)
		}
	}
}

func TestUnpackPerVersion(t *testing.T) {
	tests := []struct {
		version uint8
		packed  uint16
		want    uint32
	}{
		{1, 0x1000, 0x2000},
		{3, 0x1000, 0x2000},
		{4, 0x1000, 0x4000},
		{5, 0x1000, 0x4000},
		{8, 0x1000, 0x8000},
	}

	for _, tt := range tests {
		mem := makeHeader(3)
		mem[HVersion] = tt.version
		core, err := LoadCore(mem)
		if err != nil {
			t.Fatal(err)
		}
		if got := core.Unpack(tt.packed, false); got != tt.want {
			t.Errorf("v%d unpack(%#x) = %#x, want %#x", tt.version, tt.packed, got, tt.want)
		}
	}
}

func TestUnpackV7UsesOffsets(t *testing.T) {
	mem := makeHeader(3)
	mem[HVersion] = 7
	binary.BigEndian.PutUint16(mem[HFunctionsOffset:], 0x0100)
	binary.BigEndian.PutUint16(mem[HStringsOffset:], 0x0200)

	core, err := LoadCore(mem)
	if err != nil {
		t.Fatal(err)
	}

	if got := core.Unpack(0x10, false); got != 0x10<<2+0x0100<<3 {
		t.Errorf("routine unpack = %#x", got)
	}
	if got := core.Unpack(0x10, true); got != 0x10<<2+0x0200<<3 {
		t.Errorf("string unpack = %#x", got)
	}
}

func TestStoryIdentification(t *testing.T) {
	core, err := LoadCore(makeHeader(3)) // release 88, serial 840726
	if err != nil {
		t.Fatal(err)
	}
	if core.StoryID != Zork1 {
		t.Errorf("story id = %d, want Zork1", core.StoryID)
	}

	mem := makeHeader(3)
	copy(mem[HSerial:], "999999")
	core, _ = LoadCore(mem)
	if core.StoryID != Unknown {
		t.Errorf("unknown serial identified as %d", core.StoryID)
	}
}

func TestRestartHeaderAdvertisesInterpreter(t *testing.T) {
	mem := makeHeader(5)
	mem[HVersion] = 5
	core, err := LoadCore(mem)
	if err != nil {
		t.Fatal(err)
	}

	core.RestartHeader()

	if core.ReadByte(HInterpreterNumber) != InterpreterNumberMSDOS {
		t.Error("interpreter number not written")
	}
	if core.ReadByte(HScreenRows) != 25 || core.ReadByte(HScreenCols) != 80 {
		t.Error("screen geometry not written")
	}
	if core.ReadByte(HFontHeight) != 1 || core.ReadByte(HFontWidth) != 1 {
		t.Error("font size not 1x1")
	}
	if core.ReadByte(HStandardHigh) != 1 {
		t.Error("standard revision not claimed")
	}
	if core.ReadByte(HConfig)&ConfigPictures != 0 {
		t.Error("graphics capability wrongly advertised")
	}
}

func TestRewindDynamic(t *testing.T) {
	core, err := LoadCore(makeHeader(3))
	if err != nil {
		t.Fatal(err)
	}

	core.WriteByte(0x0100, 0xaa)
	core.RewindDynamic()
	if core.ReadByte(0x0100) != 0 {
		t.Error("rewind did not restore pristine memory")
	}
}

func TestHeaderExtension(t *testing.T) {
	mem := makeHeader(5)
	binary.BigEndian.PutUint16(mem[HExtensionTable:], 0x0300)
	binary.BigEndian.PutUint16(mem[0x0300:], 3)      // table size
	binary.BigEndian.PutUint16(mem[0x0306:], 0x0400) // unicode table

	core, err := LoadCore(mem)
	if err != nil {
		t.Fatal(err)
	}

	if core.UnicodeTableBase != 0x0400 {
		t.Errorf("unicode table = %#x", core.UnicodeTableBase)
	}
	if core.HeaderExtension(HxUnicodeTable) != 0x0400 {
		t.Error("extension read failed")
	}
	if core.HeaderExtension(10) != 0 {
		t.Error("out of range extension entry should read 0")
	}
}

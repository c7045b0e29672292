package zmachine

import (
	"bytes"
	"testing"
)

func TestCMemRoundTrip(t *testing.T) {
	original := make([]uint8, 2048)
	for i := range original {
		original[i] = uint8(i * 7)
	}

	current := append([]uint8(nil), original...)
	current[0] ^= 0xff
	current[1] ^= 0x01
	current[600] = 0
	current[1337] ^= 0x80
	// A change right at the end exercises the final run logic.
	current[2047] ^= 0x05

	encoded := encodeCMem(original, current)

	// Invariant: the skips plus the changed bytes cover the region up to
	// the last change.
	covered := 0
	for p := 0; p < len(encoded); p++ {
		if encoded[p] == 0 {
			p++
			covered += int(encoded[p]) + 1
		} else {
			covered++
		}
	}
	if covered != 2048 {
		t.Errorf("CMem covers %d bytes, want 2048", covered)
	}

	decoded := append([]uint8(nil), original...)
	applyTestCMem(t, encoded, decoded)
	if !bytes.Equal(decoded, current) {
		t.Error("CMem round trip lost data")
	}
}

func TestCMemLongRunsChain(t *testing.T) {
	original := make([]uint8, 1000)
	current := append([]uint8(nil), original...)
	current[999] = 0x42 // a single change after a 999 byte run

	encoded := encodeCMem(original, current)

	// 999 zeros need a chained run: 0x00 0xff (256) + 0x00 0xff (256) +
	// 0x00 0xff (256) + 0x00 0xe6 (231), then the changed byte.
	want := []uint8{0, 0xff, 0, 0xff, 0, 0xff, 0, 0xe6, 0x42}
	if !bytes.Equal(encoded, want) {
		t.Errorf("encoded = %v, want %v", encoded, want)
	}

	decoded := append([]uint8(nil), original...)
	applyTestCMem(t, encoded, decoded)
	if !bytes.Equal(decoded, current) {
		t.Error("chained run round trip lost data")
	}
}

// applyTestCMem decodes a CMem payload against a scratch buffer using the
// same scheme as restore.
func applyTestCMem(t *testing.T, payload []uint8, dest []uint8) {
	t.Helper()
	i := 0
	for p := 0; p < len(payload); p++ {
		c := payload[p]
		if c == 0 {
			p++
			i += int(payload[p]) + 1
		} else {
			dest[i] ^= c
			i++
		}
	}
}

func TestMemDiffRoundTrip(t *testing.T) {
	prev := make([]uint8, 40000)
	current := make([]uint8, 40000)
	for i := range prev {
		prev[i] = uint8(i)
		current[i] = uint8(i)
	}

	// Changes spaced to force short and extended run encodings.
	current[0] ^= 1
	current[100] ^= 2     // run 99: short form
	current[20000] ^= 3   // run 19899: extended form
	current[39000] ^= 4   // another extended run
	current[39999] ^= 5

	reference := append([]uint8(nil), prev...)
	diff := memDiff(current, prev)

	// memDiff updates prev to match current as it goes.
	if !bytes.Equal(prev, current) {
		t.Fatal("memDiff did not sync the reference copy")
	}

	// Applying the diff rolls the state back.
	memUndiff(diff, prev)
	if !bytes.Equal(prev, reference) {
		t.Error("memUndiff did not restore the previous state")
	}
}

func TestSaveQuetzalContainerShape(t *testing.T) {
	z := loadTestStory(t)
	z.RunToInput(100000)

	data := z.SaveQuetzal()

	if string(data[0:4]) != "FORM" || string(data[8:12]) != "IFZS" {
		t.Fatalf("bad container magic: %q %q", data[0:4], data[8:12])
	}

	declared := int(data[4])<<24 | int(data[5])<<16 | int(data[6])<<8 | int(data[7])
	if declared != len(data)-8 {
		t.Errorf("FORM length %d, file has %d content bytes", declared, len(data)-8)
	}

	if string(data[12:16]) != "IFhd" {
		t.Errorf("first chunk is %q, want IFhd", data[12:16])
	}
	ifhdLen := int(data[16])<<24 | int(data[17])<<16 | int(data[18])<<8 | int(data[19])
	if ifhdLen != 13 {
		t.Errorf("IFhd length = %d", ifhdLen)
	}

	// Chunks with odd lengths carry a pad byte, so every chunk header
	// must sit at an even offset.
	for _, tag := range []string{"IFhd", "CMem", "Stks"} {
		ix := bytes.Index(data, []byte(tag))
		if ix < 0 {
			t.Errorf("missing %s chunk", tag)
		} else if ix%2 != 0 {
			t.Errorf("%s chunk at odd offset %d", tag, ix)
		}
	}
}

func TestStacksSurviveFrames(t *testing.T) {
	z := loadTestStory(t)
	z.RunToInput(100000)

	// Push some frames and eval words so the Stks chunk has real content.
	packed := buildRoutine(z)
	z.Core.WriteByte(scratch, 0)
	z.pc = scratch
	z.callRoutine(packed, 2, []uint16{0xaaaa, 0xbbbb}, callProcedure)
	z.stackPush(0x1234)
	z.callRoutine(packed, 1, []uint16{0xcccc}, callFunction)
	z.stackPush(0x5678)

	snapshot := z.SaveQuetzal()
	if snapshot == nil {
		t.Fatal("save failed")
	}

	stackBefore := z.StackWords()
	spWant := z.sp
	fpWant := z.fp
	frameCountWant := z.frameCount
	pcWant := z.pc

	// Wreck the state, then restore.
	z.stackPop()
	z.ret(0)
	z.pc = 0

	if err := z.RestoreSnapshot(snapshot); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if z.sp != spWant || z.fp != fpWant || z.frameCount != frameCountWant {
		t.Errorf("stack registers differ: sp %d/%d fp %d/%d frames %d/%d",
			z.sp, spWant, z.fp, fpWant, z.frameCount, frameCountWant)
	}
	if z.pc != pcWant {
		t.Errorf("pc %#x != %#x", z.pc, pcWant)
	}
	for i := spWant; i < StackSize; i++ {
		if z.stack[i] != stackBefore[i] {
			t.Fatalf("stack word %d differs: %#x != %#x", i, z.stack[i], stackBefore[i])
		}
	}
}

package zmachine

import (
	"strings"
	"testing"
)

func TestWordBufferFlushing(t *testing.T) {
	z := loadTestStory(t)

	z.printString("hello")
	if len(z.screenText) != 0 {
		t.Error("unfinished word leaked to the screen before a break")
	}

	z.printString(" ")
	if got := string(z.screenText); got != "hello" {
		t.Errorf("after space: %q", got)
	}

	// A hyphen run flushes once it ends.
	z.printString("co-op")
	if got := z.TakeOutput(); got != "hello co-op" {
		t.Errorf("TakeOutput = %q", got)
	}
}

func TestMemoryStreamRedirection(t *testing.T) {
	z := loadTestStory(t)
	table := uint16(0x0380)

	setArgs(z, 3, table)
	z.zOutputStream()

	z.printString("abc")
	z.newLine()

	// While stream 3 is open nothing reaches the screen.
	if len(z.screenText) != 0 {
		t.Error("stream 3 leaked to the screen")
	}

	setArgs(z, uint16(0x10000-3)) // -3 closes the stream
	z.zOutputStream()

	if size := z.Core.ReadWord(uint32(table)); size != 4 {
		t.Errorf("table length = %d, want 4", size)
	}
	got := z.Core.ReadSlice(uint32(table)+2, uint32(table)+2+4)
	if string(got[:3]) != "abc" || got[3] != 13 {
		t.Errorf("table content = %v", got)
	}
}

func TestMemoryStreamNesting(t *testing.T) {
	z := loadTestStory(t)

	outer := uint16(0x0380)
	inner := uint16(0x03c0)

	setArgs(z, 3, outer)
	z.zOutputStream()
	z.printString("out")
	z.flushBuffer()

	setArgs(z, 3, inner)
	z.zOutputStream()
	z.printString("in")
	setArgs(z, uint16(0x10000-3))
	z.zOutputStream()

	z.printString("er")
	setArgs(z, uint16(0x10000-3))
	z.zOutputStream()

	if got := z.Core.ReadSlice(uint32(inner)+2, uint32(inner)+4); string(got) != "in" {
		t.Errorf("inner table = %q", got)
	}
	if got := z.Core.ReadSlice(uint32(outer)+2, uint32(outer)+7); string(got) != "outer" {
		t.Errorf("outer table = %q", got)
	}
}

func TestTranscriptFollowsScriptingFlag(t *testing.T) {
	z := loadTestStory(t)

	// Setting the scripting bit in Flags 2 opens the transcript stream.
	flags := z.Core.ReadByte(0x11)
	z.storeb(0x11, flags|0x01)
	if !z.streams.Transcript {
		t.Fatal("scripting flag did not open the transcript")
	}

	z.printString("logged ")
	z.flushBuffer()
	if got := z.TakeTranscript(); !strings.Contains(got, "logged") {
		t.Errorf("transcript = %q", got)
	}

	z.storeb(0x11, flags&^0x01)
	if z.streams.Transcript {
		t.Error("clearing the flag did not close the transcript")
	}
}

func TestScreenStreamToggle(t *testing.T) {
	z := loadTestStory(t)

	setArgs(z, uint16(0x10000-1)) // deselect the screen
	z.zOutputStream()
	z.printString("invisible ")
	z.flushBuffer()
	if len(z.screenText) != 0 {
		t.Error("deselected screen still received text")
	}

	setArgs(z, 1)
	z.zOutputStream()
	z.printString("visible ")
	if got := z.TakeOutput(); got != "visible " {
		t.Errorf("output = %q", got)
	}
}

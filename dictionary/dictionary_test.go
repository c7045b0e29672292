package dictionary

import (
	"encoding/binary"
	"sort"
	"testing"

	"github.com/tlgreaves/grue/zcore"
	"github.com/tlgreaves/grue/zstring"
)

const dictBase = 0x0400

func buildDictionary(t *testing.T, words []string, count int16) (*Dictionary, *zcore.Core, *zstring.Alphabets) {
	t.Helper()

	mem := make([]uint8, 0x800)
	mem[0] = 3
	binary.BigEndian.PutUint16(mem[zcore.HDynamicSize:], 0x800)

	core, err := zcore.LoadCore(mem)
	if err != nil {
		t.Fatal(err)
	}
	alphabets := zstring.LoadAlphabets(&core)

	// Header: separators ". ,", entry length 7, entry count.
	p := uint32(dictBase)
	core.WriteByte(p, 2)
	core.WriteByte(p+1, '.')
	core.WriteByte(p+2, ',')
	core.WriteByte(p+3, 7)
	core.WriteWord(p+4, uint16(count))
	p += 6

	for _, w := range words {
		encoded := zstring.Encode([]uint8(w), 3, alphabets)
		copy(core.ReadSlice(p, p+4), encoded)
		core.WriteByte(p+4, 0x80) // flag byte
		p += 7
	}

	return ParseDictionary(dictBase, &core, alphabets), &core, alphabets
}

func sortedWords(words []string) []string {
	out := append([]string(nil), words...)
	sort.Strings(out)
	return out
}

func TestParseHeader(t *testing.T) {
	d, _, _ := buildDictionary(t, sortedWords([]string{"open", "mailbox", "go"}), 3)

	if d.Header.NumInputCodes != 2 || d.Header.EntryLength != 7 || d.Header.Count != 3 {
		t.Errorf("header = %+v", d.Header)
	}
	if !d.IsSeparator('.') || !d.IsSeparator(',') {
		t.Error("separators not recognised")
	}
	if d.IsSeparator('x') {
		t.Error("'x' wrongly treated as a separator")
	}
}

func TestBinarySearchFind(t *testing.T) {
	words := sortedWords([]string{"go", "look", "mailbox", "open", "take", "xyzzy"})
	d, _, alphabets := buildDictionary(t, words, int16(len(words)))

	core3 := coreForEncoding(t)
	for i, w := range words {
		addr := d.Find(zstring.Encode([]uint8(w), 3, alphabets))
		want := uint16(dictBase + 6 + i*7)
		if addr != want {
			t.Errorf("Find(%q) = %#x, want %#x", w, addr, want)
		}
	}

	if addr := d.Find(zstring.Encode([]uint8("plugh"), 3, zstring.LoadAlphabets(core3))); addr != 0 {
		t.Errorf("unknown word found at %#x", addr)
	}
}

func TestUnsortedUserDictionary(t *testing.T) {
	// A negative count marks an unsorted user dictionary.
	words := []string{"zebra", "apple"}
	d, _, alphabets := buildDictionary(t, words, -2)

	if d.Header.Count != -2 {
		t.Errorf("count = %d", d.Header.Count)
	}
	if addr := d.Find(zstring.Encode([]uint8("apple"), 3, alphabets)); addr != dictBase+6+7 {
		t.Errorf("linear lookup failed: %#x", addr)
	}
}

func coreForEncoding(t *testing.T) *zcore.Core {
	t.Helper()
	mem := make([]uint8, 0x100)
	mem[0] = 3
	core, err := zcore.LoadCore(mem)
	if err != nil {
		t.Fatal(err)
	}
	return &core
}

// Package dictionary parses the story's word lists: a separator set, an
// entry length, an entry count and the entries themselves, sorted by packed
// keyword so lookup can binary search.
package dictionary

import (
	"bytes"
	"sort"

	"github.com/tlgreaves/grue/zcore"
	"github.com/tlgreaves/grue/zstring"
)

type Header struct {
	NumInputCodes uint8
	InputCodes    []uint8
	EntryLength   uint8
	Count         int16
}

type Entry struct {
	Address     uint16
	EncodedWord []uint8
	DecodedWord string
	Data        []uint8
}

type Dictionary struct {
	Header  Header
	entries []Entry
	sorted  bool
}

// ParseDictionary reads the dictionary at baseAddress. A negative entry
// count marks a user dictionary with unsorted entries, which forces linear
// lookup.
func ParseDictionary(baseAddress uint32, core *zcore.Core, alphabets *zstring.Alphabets) *Dictionary {
	numInputCodes := core.ReadByte(baseAddress)

	header := Header{
		NumInputCodes: numInputCodes,
		InputCodes:    core.ReadSlice(baseAddress+1, baseAddress+1+uint32(numInputCodes)),
		EntryLength:   core.ReadByte(baseAddress + 1 + uint32(numInputCodes)),
		Count:         int16(core.ReadWord(baseAddress + 2 + uint32(numInputCodes))),
	}

	count := int(header.Count)
	sorted := true
	if count < 0 {
		count = -count
		sorted = false
	}

	encodedWordLength := 4
	if core.Version > 3 {
		encodedWordLength = 6
	}

	entryPtr := baseAddress + 4 + uint32(numInputCodes)
	entries := make([]Entry, count)

	for ix := 0; ix < count; ix++ {
		decodedWord, _ := zstring.DecodeString(core, entryPtr, alphabets)
		entries[ix] = Entry{
			Address:     uint16(entryPtr),
			EncodedWord: core.ReadSlice(entryPtr, entryPtr+uint32(encodedWordLength)),
			DecodedWord: decodedWord,
			Data:        core.ReadSlice(entryPtr+uint32(encodedWordLength), entryPtr+uint32(header.EntryLength)),
		}

		entryPtr += uint32(header.EntryLength)
	}

	return &Dictionary{
		Header:  header,
		entries: entries,
		sorted:  sorted,
	}
}

// IsSeparator reports whether c is in the dictionary's separator set. The
// separators become single-character tokens of their own during tokenising.
func (d *Dictionary) IsSeparator(c uint8) bool {
	for _, separator := range d.Header.InputCodes {
		if c == separator {
			return true
		}
	}
	return false
}

// Find returns the byte address of the entry whose packed keyword matches
// zstr, or 0 when the word is not in the dictionary.
func (d *Dictionary) Find(zstr []uint8) uint16 {
	if !d.sorted {
		for _, entry := range d.entries {
			if bytes.Equal(entry.EncodedWord, zstr) {
				return entry.Address
			}
		}
		return 0
	}

	ix := sort.Search(len(d.entries), func(i int) bool {
		return bytes.Compare(d.entries[i].EncodedWord, zstr) >= 0
	})
	if ix < len(d.entries) && bytes.Equal(d.entries[ix].EncodedWord, zstr) {
		return d.entries[ix].Address
	}

	return 0
}

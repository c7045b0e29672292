package zmachine

import (
	"strconv"

	"github.com/tlgreaves/grue/dictionary"
	"github.com/tlgreaves/grue/zerr"
	"github.com/tlgreaves/grue/zstring"
	"github.com/tlgreaves/grue/ztable"
)

func (z *Interpreter) printZsciiBytes(zscii []uint8) {
	for _, c := range zscii {
		z.printZscii(c)
	}
}

// zPrint outputs the Z-string embedded in the instruction stream.
func (z *Interpreter) zPrint() {
	text, bytesRead := zstring.Decode(&z.Core, z.pc, z.Alphabets)
	z.pc += bytesRead
	z.printZsciiBytes(text)
}

func (z *Interpreter) zPrintRet() {
	z.zPrint()
	z.newLine()
	z.ret(1)
}

func (z *Interpreter) zPrintAddr() {
	text, _ := zstring.Decode(&z.Core, uint32(z.zargs[0]), z.Alphabets)
	z.printZsciiBytes(text)
}

func (z *Interpreter) zPrintPaddr() {
	addr := z.Core.Unpack(z.zargs[0], true)
	if addr >= z.Core.StorySize {
		z.Errors.Runtime(zerr.ErrPrintAddr, z.instructionPC)
		return
	}
	text, _ := zstring.Decode(&z.Core, addr, z.Alphabets)
	z.printZsciiBytes(text)
}

func (z *Interpreter) zPrintChar() {
	z.printZscii(uint8(z.zargs[0]))
}

func (z *Interpreter) zPrintNum() {
	z.printString(strconv.Itoa(int(int16(z.zargs[0]))))
}

func (z *Interpreter) zPrintUnicode() {
	if c, ok := zstring.RuneToZscii(rune(z.zargs[0]), &z.Core); ok {
		z.printZscii(c)
	} else {
		z.printZscii('?')
	}
}

// zCheckUnicode stores bit 0 for printable, bit 1 for readable.
func (z *Interpreter) zCheckUnicode() {
	if zstring.CanOutput(rune(z.zargs[0]), &z.Core) {
		z.store(3)
	} else {
		z.store(0)
	}
}

func (z *Interpreter) zPrintTable() {
	height := uint16(1)
	skip := uint16(0)
	if z.zargc > 2 {
		height = z.zargs[2]
	}
	if z.zargc > 3 {
		skip = z.zargs[3]
	}

	for _, c := range []byte(ztable.PrintTable(&z.Core, uint32(z.zargs[0]), z.zargs[1], height, skip)) {
		if c == '\n' {
			z.printZscii(zcReturn)
		} else {
			z.printZscii(c)
		}
	}
}

func (z *Interpreter) zNewLine() {
	z.newLine()
}

// zEncodeText packs a word from the text buffer into dictionary form.
//
//	zargs[0] = text buffer, zargs[1] = word length, zargs[2] = offset,
//	zargs[3] = destination
func (z *Interpreter) zEncodeText() {
	src := z.Core.ReadSlice(uint32(z.zargs[0]+z.zargs[2]), uint32(z.zargs[0]+z.zargs[2]+z.zargs[1]))
	encoded := zstring.Encode(src, z.Core.Version, z.Alphabets)
	for i, b := range encoded {
		z.storeb(uint32(z.zargs[3])+uint32(i), b)
	}
}

type token struct {
	start  uint32 // offset of the word within the text buffer
	length int
	addr   uint16 // dictionary entry address, 0 for unknown words
}

// tokenise splits the text buffer on whitespace and the dictionary's
// separator set (separators become tokens of their own), looks each word up
// and fills the parse buffer with (address, length, offset) entries.
func (z *Interpreter) tokenise(text uint32, parse uint32, dict *dictionary.Dictionary, skipUnknown bool) {
	var content []uint8
	var contentBase uint32

	if z.Core.Version >= 5 {
		length := uint32(z.Core.ReadByte(text + 1))
		contentBase = text + 2
		content = z.Core.ReadSlice(contentBase, contentBase+length)
	} else {
		contentBase = text + 1
		end := contentBase
		for z.Core.ReadByte(end) != 0 {
			end++
		}
		content = z.Core.ReadSlice(contentBase, end)
	}

	var tokens []token
	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case c == ' ':
			i++
		case dict.IsSeparator(c):
			tokens = append(tokens, z.lookupToken(content[i:i+1], contentBase+uint32(i), dict))
			i++
		default:
			start := i
			for i < len(content) && content[i] != ' ' && !dict.IsSeparator(content[i]) {
				i++
			}
			tokens = append(tokens, z.lookupToken(content[start:i], contentBase+uint32(start), dict))
		}
	}

	maxTokens := int(z.Core.ReadByte(parse))
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}

	z.storeb(parse+1, uint8(len(tokens)))
	entry := parse + 2
	for _, t := range tokens {
		if t.addr != 0 || !skipUnknown {
			z.storew(entry, t.addr)
			z.storeb(entry+2, uint8(t.length))
			z.storeb(entry+3, uint8(t.start-text))
		}
		entry += 4
	}
}

func (z *Interpreter) lookupToken(word []uint8, start uint32, dict *dictionary.Dictionary) token {
	encoded := zstring.Encode(word, z.Core.Version, z.Alphabets)
	return token{
		start:  start,
		length: len(word),
		addr:   dict.Find(encoded),
	}
}

// zTokenise re-runs lexical analysis, optionally against a user dictionary.
//
//	zargs[0] = text buffer, zargs[1] = parse buffer,
//	zargs[2] = optional dictionary, zargs[3] = skip-unknown flag
func (z *Interpreter) zTokenise() {
	dict := z.Dictionary
	skipUnknown := false

	if z.zargc > 2 && z.zargs[2] != 0 {
		dict = dictionary.ParseDictionary(uint32(z.zargs[2]), &z.Core, z.Alphabets)
	}
	if z.zargc > 3 {
		skipUnknown = z.zargs[3] != 0
	}

	z.tokenise(uint32(z.zargs[0]), uint32(z.zargs[1]), dict, skipUnknown)
}

func (z *Interpreter) showStatus() {
	if z.Core.Version > 3 {
		return
	}

	locationId := z.readVariable(16, true)
	location := ""
	if locationId != 0 && z.validObject(locationId) {
		location = z.object(locationId).Name
	}

	z.screen.ShowStatus(StatusBar{
		PlaceName:   location,
		Score:       int(int16(z.readVariable(17, true))),
		Moves:       int(int16(z.readVariable(18, true))),
		IsTimeBased: z.Core.StatusBarTimeBased,
	})
}

func (z *Interpreter) zShowStatus() {
	z.showStatus()
}

// zRead is the line input opcode.
//
//	zargs[0] = text buffer, zargs[1] = parse buffer,
//	zargs[2] = timeout in tenths of a second, zargs[3] = timeout routine
func (z *Interpreter) zRead() {
	z.flushBuffer()
	if z.Core.Version <= 3 {
		z.showStatus()
	}

	text := uint32(z.zargs[0])
	parse := uint32(z.zargs[1])
	maxLen := int(z.Core.ReadByte(text))

	line, terminator, abandoned := z.readInputLine(maxLen)
	if abandoned {
		if z.Core.Version >= 5 {
			z.store(0)
		}
		return
	}

	line = normaliseInput(line, z.StripInput)
	z.recordInput(string(line))

	if len(line) > maxLen {
		line = line[:maxLen]
	}

	if z.Core.Version >= 5 {
		z.storeb(text+1, uint8(len(line)))
		for i, c := range line {
			z.storeb(text+2+uint32(i), c)
		}
	} else {
		for i, c := range line {
			z.storeb(text+1+uint32(i), c)
		}
		z.storeb(text+1+uint32(len(line)), 0)
	}

	if parse != 0 {
		z.tokenise(text, parse, z.Dictionary, false)
	}

	if z.Core.Version >= 5 {
		z.store(uint16(terminator))
	}
}

// readInputLine takes the host-queued line when one is waiting, otherwise
// asks the presenter, running the timeout routine as needed. abandoned is
// true when a timeout routine told us to drop the input.
func (z *Interpreter) readInputLine(maxLen int) (line []uint8, terminator uint8, abandoned bool) {
	if z.hasPendingInput {
		line = z.pendingInput
		z.pendingInput = nil
		z.hasPendingInput = false
		return line, zcReturn, false
	}

	timeout := uint16(0)
	routine := uint16(0)
	if z.zargc > 2 {
		timeout = z.zargs[2]
	}
	if z.zargc > 3 {
		routine = z.zargs[3]
	}

	for {
		s, term := z.screen.ReadLine(maxLen, timeout)
		if term != 0 {
			zscii := make([]uint8, 0, len(s))
			for _, r := range s {
				if c, ok := zstring.RuneToZscii(r, &z.Core); ok && c != zcReturn {
					zscii = append(zscii, c)
				}
			}
			return zscii, term, false
		}
		if routine == 0 || z.directCall(routine) != 0 {
			return nil, 0, true
		}
	}
}

// zReadChar reads one key.
//
//	zargs[0] = input device (always 1), zargs[1] = timeout,
//	zargs[2] = timeout routine
func (z *Interpreter) zReadChar() {
	z.flushBuffer()

	if z.hasPendingInput {
		c := uint8(zcReturn)
		if len(z.pendingInput) > 0 {
			c = z.pendingInput[0]
			z.pendingInput = z.pendingInput[1:]
		}
		if len(z.pendingInput) == 0 {
			z.hasPendingInput = false
		}
		z.store(uint16(c))
		return
	}

	timeout := uint16(0)
	routine := uint16(0)
	if z.zargc > 1 {
		timeout = z.zargs[1]
	}
	if z.zargc > 2 {
		routine = z.zargs[2]
	}

	for {
		c := z.screen.ReadKey(timeout)
		if c != 0 {
			z.store(uint16(c))
			return
		}
		if routine == 0 || z.directCall(routine) != 0 {
			z.store(0)
			return
		}
	}
}

// normaliseInput lowercases a command the way the original parsers expect,
// optionally dropping the trailing question marks the Infocom classics
// treat as a parse error.
func normaliseInput(line []uint8, stripQuestion bool) []uint8 {
	out := make([]uint8, 0, len(line))
	for _, c := range line {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	if stripQuestion {
		for len(out) > 0 && (out[len(out)-1] == '?' || out[len(out)-1] == ' ') {
			out = out[:len(out)-1]
		}
	}
	return out
}

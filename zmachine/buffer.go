package zmachine

import (
	"github.com/tlgreaves/grue/zerr"
	"github.com/tlgreaves/grue/zstring"
)

// ZSCII control characters that matter to buffering.
const (
	zcNewStyle = 0x01
	zcNewFont  = 0x02
	zcIndent   = 0x09
	zcGap      = 0x0b
	zcReturn   = 0x0d
)

// printZscii is the high level output function. While buffering is on,
// characters collect in the word buffer so the presenter always receives
// whole words; the buffer flushes before whitespace and after a run of
// hyphens ends.
func (z *Interpreter) printZscii(c uint8) {
	if len(z.streams.Memory) > 0 || z.enableBuffering {
		if c == zcReturn {
			z.newLine()
			return
		}
		if c == 0 {
			return
		}

		if c == ' ' || c == zcIndent || c == zcGap || (z.prevC == '-' && c != '-') {
			z.flushBuffer()
		}

		z.prevC = c

		z.buffer[z.bufpos] = c
		z.bufpos++
		if z.bufpos == textBufferSize {
			z.Errors.Runtime(zerr.ErrTextBufOvf, z.instructionPC)
			z.bufpos--
		}
	} else {
		if c == zcReturn {
			z.streamNewLine()
			return
		}
		if c != 0 {
			z.streamChar(c)
		}
	}
}

// flushBuffer sends the buffered word to the streams. The latch stops the
// nested flush that happens when printing mid-flush triggers a newline
// interrupt routine, which may run arbitrary opcodes.
func (z *Interpreter) flushBuffer() {
	if z.flushLocked || z.bufpos == 0 {
		return
	}

	z.flushLocked = true
	z.streamWord(z.buffer[:z.bufpos])
	z.flushLocked = false

	z.bufpos = 0
	z.prevC = 0
}

// newLine flushes the pending word and emits a newline to each live stream.
func (z *Interpreter) newLine() {
	z.flushBuffer()
	z.streamNewLine()
}

// printString routes host text (warnings, object names, numbers) through
// the same pipeline as guest text.
func (z *Interpreter) printString(s string) {
	for _, r := range s {
		if r == '\n' {
			z.printZscii(zcReturn)
			continue
		}
		if c, ok := zstring.RuneToZscii(r, &z.Core); ok {
			z.printZscii(c)
		} else {
			z.printZscii('?')
		}
	}
}

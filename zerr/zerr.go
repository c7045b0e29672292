// Package zerr implements the interpreter's numbered runtime errors.
//
// Codes 1..18 describe genuinely broken stories or interpreter state and are
// fatal by default. Codes 19..32 cover the "called with object 0" family
// which many shipped games trigger routinely; those are counted and at most
// warned about.
package zerr

import "fmt"

const (
	ErrTextBufOvf = iota + 1
	ErrStoreRange
	ErrDivZero
	ErrIllObj
	ErrIllAttr
	ErrNoProp
	ErrStkOvf
	ErrIllCallAddr
	ErrCallNonRtn
	ErrStkUndf
	ErrIllOpcode
	ErrBadFrame
	ErrIllJump
	ErrSaveInInter
	ErrStr3Nesting
	ErrIllWin
	ErrIllWinProp
	ErrPrintAddr
	ErrJin0
	ErrGetChild0
	ErrGetParent0
	ErrGetSibling0
	ErrGetPropAddr0
	ErrGetProp0
	ErrPutProp0
	ErrClearAttr0
	ErrSetAttr0
	ErrTestAttr0
	ErrMoveObject0
	ErrMoveObjectTo0
	ErrRemoveObject0
	ErrGetNextProp0

	NumErrors = ErrGetNextProp0
)

// MaxFatal is the last error code that aborts the interpreter by default.
const MaxFatal = ErrPrintAddr

var messages = [NumErrors]string{
	"Text buffer overflow",
	"Store out of dynamic memory",
	"Division by zero",
	"Illegal object",
	"Illegal attribute",
	"No such property",
	"Stack overflow",
	"Call to illegal address",
	"Call to non-routine",
	"Stack underflow",
	"Illegal opcode",
	"Bad stack frame",
	"Jump to illegal address",
	"Can't save while in interrupt",
	"Nesting stream #3 too deep",
	"Illegal window",
	"Illegal window property",
	"Print at illegal address",
	"@jin called with object 0",
	"@get_child called with object 0",
	"@get_parent called with object 0",
	"@get_sibling called with object 0",
	"@get_prop_addr called with object 0",
	"@get_prop called with object 0",
	"@put_prop called with object 0",
	"@clear_attr called with object 0",
	"@set_attr called with object 0",
	"@test_attr called with object 0",
	"@move_object called moving object 0",
	"@move_object called moving into object 0",
	"@remove_object called with object 0",
	"@get_next_prop called with object 0",
}

// Message returns the text for an error code, or "" for an invalid code.
func Message(code int) string {
	if code <= 0 || code > NumErrors {
		return ""
	}
	return messages[code-1]
}

// Mode selects how non-fatal runtime errors are surfaced.
type Mode int

const (
	ReportNever Mode = iota
	ReportOnce
	ReportAlways
	ReportFatal
)

// ParseMode maps a configuration string onto a report mode, defaulting to
// once-per-code for anything unrecognised.
func ParseMode(s string) Mode {
	switch s {
	case "never":
		return ReportNever
	case "always":
		return ReportAlways
	case "fatal":
		return ReportFatal
	default:
		return ReportOnce
	}
}

// Reporter counts runtime errors and routes them to the guest text stream or
// the presenter's fatal handler according to the configured mode.
type Reporter struct {
	Mode Mode

	// IgnoreFatal downgrades codes 1..MaxFatal to reportable warnings.
	// Useful for analysis runs over known-broken story files.
	IgnoreFatal bool

	// Print emits warning text into the guest's output stream.
	Print func(string)

	// Fatal terminates the interpreter with a message.
	Fatal func(string)

	counts [NumErrors]int
}

// Reset clears the per-code occurrence counters.
func (r *Reporter) Reset() {
	r.counts = [NumErrors]int{}
}

// Count returns how many times the given code has been raised.
func (r *Reporter) Count(code int) int {
	if code <= 0 || code > NumErrors {
		return 0
	}
	return r.counts[code-1]
}

// Runtime raises error code at the given PC. Fatal codes reach the Fatal
// handler; soft codes increment their counter and may print a warning.
func (r *Reporter) Runtime(code int, pc uint32) {
	if code <= 0 || code > NumErrors {
		return
	}

	if r.Mode == ReportFatal || (!r.IgnoreFatal && code <= MaxFatal) {
		r.Fatal(messages[code-1])
		return
	}

	wasFirst := r.counts[code-1] == 0
	r.counts[code-1]++

	if r.Mode == ReportAlways || (r.Mode == ReportOnce && wasFirst) {
		msg := fmt.Sprintf("Warning: %s (PC = %x)", messages[code-1], pc)
		if r.Mode == ReportOnce {
			msg += " (will ignore further occurrences)"
		} else {
			msg += fmt.Sprintf(" (occurence %d)", r.counts[code-1])
		}
		r.Print(msg + "\n")
	}
}

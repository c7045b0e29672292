package zerr

import (
	"strings"
	"testing"
)

type capture struct {
	printed []string
	fatal   []string
}

func (c *capture) reporter(mode Mode) *Reporter {
	return &Reporter{
		Mode:  mode,
		Print: func(s string) { c.printed = append(c.printed, s) },
		Fatal: func(s string) { c.fatal = append(c.fatal, s) },
	}
}

func TestFatalCodesReachFatal(t *testing.T) {
	c := &capture{}
	r := c.reporter(ReportOnce)

	r.Runtime(ErrDivZero, 0x1234)

	if len(c.fatal) != 1 || c.fatal[0] != "Division by zero" {
		t.Errorf("fatal calls = %v", c.fatal)
	}
	if len(c.printed) != 0 {
		t.Errorf("fatal error also printed: %v", c.printed)
	}
}

func TestSoftCodesCountAndWarnOnce(t *testing.T) {
	c := &capture{}
	r := c.reporter(ReportOnce)

	r.Runtime(ErrJin0, 0xabcd)
	r.Runtime(ErrJin0, 0xabce)

	if r.Count(ErrJin0) != 2 {
		t.Errorf("count = %d", r.Count(ErrJin0))
	}
	if len(c.printed) != 1 {
		t.Fatalf("printed %d times in once mode", len(c.printed))
	}
	if !strings.Contains(c.printed[0], "@jin called with object 0") ||
		!strings.Contains(c.printed[0], "(PC = abcd)") {
		t.Errorf("warning text = %q", c.printed[0])
	}
	if len(c.fatal) != 0 {
		t.Errorf("soft error escalated: %v", c.fatal)
	}
}

func TestAlwaysModeNumbersOccurrences(t *testing.T) {
	c := &capture{}
	r := c.reporter(ReportAlways)

	r.Runtime(ErrGetChild0, 1)
	r.Runtime(ErrGetChild0, 2)

	if len(c.printed) != 2 {
		t.Fatalf("printed %d times in always mode", len(c.printed))
	}
	if !strings.Contains(c.printed[1], "(occurence 2)") {
		t.Errorf("second warning = %q", c.printed[1])
	}
}

func TestNeverModeOnlyCounts(t *testing.T) {
	c := &capture{}
	r := c.reporter(ReportNever)

	r.Runtime(ErrSetAttr0, 1)

	if len(c.printed) != 0 || len(c.fatal) != 0 {
		t.Error("never mode produced output")
	}
	if r.Count(ErrSetAttr0) != 1 {
		t.Error("never mode should still count")
	}
}

func TestFatalModeEscalatesSoftCodes(t *testing.T) {
	c := &capture{}
	r := c.reporter(ReportFatal)

	r.Runtime(ErrGetParent0, 1)

	if len(c.fatal) != 1 {
		t.Error("fatal mode did not escalate a soft code")
	}
}

func TestIgnoreFatalDowngrades(t *testing.T) {
	c := &capture{}
	r := c.reporter(ReportOnce)
	r.IgnoreFatal = true

	r.Runtime(ErrStkOvf, 7)

	if len(c.fatal) != 0 {
		t.Error("ignored fatal still reached Fatal")
	}
	if len(c.printed) != 1 || !strings.Contains(c.printed[0], "Stack overflow") {
		t.Errorf("printed = %v", c.printed)
	}
}

func TestBoundsAndMessages(t *testing.T) {
	c := &capture{}
	r := c.reporter(ReportAlways)

	r.Runtime(0, 0)
	r.Runtime(NumErrors+1, 0)
	if len(c.printed)+len(c.fatal) != 0 {
		t.Error("out of range codes produced output")
	}

	if NumErrors != 32 {
		t.Errorf("NumErrors = %d, want 32", NumErrors)
	}
	if Message(ErrTextBufOvf) != "Text buffer overflow" {
		t.Errorf("message 1 = %q", Message(ErrTextBufOvf))
	}
	if Message(ErrGetNextProp0) != "@get_next_prop called with object 0" {
		t.Errorf("message 32 = %q", Message(ErrGetNextProp0))
	}

	if ParseMode("fatal") != ReportFatal || ParseMode("never") != ReportNever ||
		ParseMode("always") != ReportAlways || ParseMode("") != ReportOnce {
		t.Error("mode parsing wrong")
	}
}

func TestReset(t *testing.T) {
	c := &capture{}
	r := c.reporter(ReportNever)

	r.Runtime(ErrJin0, 0)
	r.Reset()
	if r.Count(ErrJin0) != 0 {
		t.Error("reset did not clear counters")
	}
}

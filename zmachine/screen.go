package zmachine

// Window numbers. V1-5 has exactly the two.
const (
	LowerWindow = 0
	UpperWindow = 1
)

// Text styles, combinable except Roman.
type TextStyle uint16

const (
	Roman        TextStyle = 0
	ReverseVideo TextStyle = 1
	Bold         TextStyle = 2
	Italic       TextStyle = 4
	FixedPitch   TextStyle = 8
)

// Fonts.
const (
	FontNormal     = 1
	FontPicture    = 2
	FontCharGraphs = 3
	FontFixedPitch = 4
)

// Restart stages passed to the presenter so it can reset and restore its
// own state around a guest restart.
const (
	RestartBegin = iota
	RestartWpropSet
	RestartEnd
)

// StatusBar is the V1-3 status line content, refreshed before each read.
type StatusBar struct {
	PlaceName   string
	Score       int
	Moves       int
	IsTimeBased bool
}

// Screen is the capability set the core needs from a presenter. All screen
// coordinates are 1-based. The core never assumes the presenter actually
// renders anything; NullScreen satisfies every contract trivially.
type Screen interface {
	DisplayChar(r rune)
	DisplayString(s string)
	ShowStatus(status StatusBar)
	SplitWindow(lines uint16)
	SetWindow(window uint16)
	SetCursor(line uint16, column uint16)
	EraseWindow(window int16)
	EraseLine(value uint16)
	SetTextStyle(style uint16)
	SetColour(foreground uint16, background uint16)
	SetFont(font uint16) uint16
	BufferMode(flag uint16)
	SoundEffect(number uint16, effect uint16, volume uint16)
	RestartGame(stage int)

	// ReadKey returns a ZSCII key, or 0 on timeout. Timeouts are in
	// tenths of a second.
	ReadKey(timeout uint16) uint8

	// ReadLine returns an input line and the terminating key (or 0 on
	// timeout). The presenter is responsible for echoing edits.
	ReadLine(max int, timeout uint16) (string, uint8)

	// Fatal terminates the interpreter with an error.
	Fatal(msg string)
}

// NullScreen discards all presentation. The driver layer uses it because
// observations are captured inside the interpreter anyway.
type NullScreen struct{}

func (NullScreen) DisplayChar(rune)                  {}
func (NullScreen) DisplayString(string)              {}
func (NullScreen) ShowStatus(StatusBar)              {}
func (NullScreen) SplitWindow(uint16)                {}
func (NullScreen) SetWindow(uint16)                  {}
func (NullScreen) SetCursor(uint16, uint16)          {}
func (NullScreen) EraseWindow(int16)                 {}
func (NullScreen) EraseLine(uint16)                  {}
func (NullScreen) SetTextStyle(uint16)               {}
func (NullScreen) SetColour(uint16, uint16)          {}
func (NullScreen) SetFont(uint16) uint16             { return FontNormal }
func (NullScreen) BufferMode(uint16)                 {}
func (NullScreen) SoundEffect(uint16, uint16, uint16) {}
func (NullScreen) RestartGame(int)                   {}
func (NullScreen) ReadKey(uint16) uint8              { return zcReturn }
func (NullScreen) ReadLine(int, uint16) (string, uint8) {
	return "", zcReturn
}
func (NullScreen) Fatal(msg string) {
	panic("fatal interpreter error: " + msg)
}

// ScreenModel is the interpreter-side view of the two-window screen, enough
// to answer get_cursor and to keep upper window writes out of the
// observation stream.
type ScreenModel struct {
	CurrentWindow     int
	UpperWindowHeight int
	CursorRow         int
	CursorCol         int
	CurrentStyle      TextStyle
	CurrentFont       uint16
	Foreground        uint16
	Background        uint16
}

func newScreenModel() ScreenModel {
	return ScreenModel{
		CurrentWindow: LowerWindow,
		CursorRow:     1,
		CursorCol:     1,
		CurrentStyle:  Roman,
		CurrentFont:   FontNormal,
		Foreground:    1,
		Background:    1,
	}
}

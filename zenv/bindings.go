package zenv

import "strings"

// Binding is one row of the per-title table: the input rituals, observation
// cleanup and memory addresses a driver needs but the Z-machine Standard
// deliberately doesn't define. The VM itself stays unaware of all of this.
type Binding struct {
	Name string

	// IntroActions are replayed during Setup to get past title screens
	// and login sequences before the first real prompt.
	IntroActions []string

	// StripInput drops trailing question marks from commands, which the
	// Infocom-era parsers reject.
	StripInput bool

	CleanObservation func(obs string) string

	VictoryText  string
	GameOverText string

	SelfObject   uint16
	MaxScore     int
	NumWorldObjs int

	// Score and Moves read the per-title counters straight out of dynamic
	// memory. Nil means the title has no known counter.
	Score func(ram []uint8) int
	Moves func(ram []uint8) int

	IgnoreMovedObj  func(obj uint16, dest uint16) bool
	IgnoreAttrSet   func(obj uint16, attr uint16) bool
	IgnoreAttrClear func(obj uint16, attr uint16) bool
}

// cleanIdentity leaves the observation alone.
func cleanIdentity(obs string) string { return obs }

// cleanSkipFirstLine drops everything up to the first newline, which holds
// the echoed command or a status fragment on most Infocom titles.
func cleanSkipFirstLine(obs string) string {
	if ix := strings.IndexByte(obs, '\n'); ix >= 0 {
		return obs[ix+1:]
	}
	return obs
}

// cleanAtPrompt cuts the observation at the trailing "> " prompt.
func cleanAtPrompt(obs string) string {
	if ix := strings.LastIndex(obs, ">"); ix > 0 {
		return obs[:ix]
	}
	return obs
}

// scoreByte reads a signed one byte score counter.
func scoreByte(addr int) func(ram []uint8) int {
	return func(ram []uint8) int {
		if addr >= len(ram) {
			return 0
		}
		return int(int8(ram[addr]))
	}
}

// scoreUByte reads an unsigned one byte score counter.
func scoreUByte(addr int) func(ram []uint8) int {
	return func(ram []uint8) int {
		if addr >= len(ram) {
			return 0
		}
		return int(ram[addr])
	}
}

// movesWord reads a two byte move counter.
func movesWord(addr int) func(ram []uint8) int {
	return func(ram []uint8) int {
		if addr+1 >= len(ram) {
			return 0
		}
		return int(int16(ram[addr])<<8 | int16(ram[addr+1]))
	}
}

func ignoreNone(uint16, uint16) bool { return false }

const defaultVictoryText = "****  You have won  ****"
const defaultGameOverText = "****  You have died  ****"

// defaultBinding covers any story without a row of its own.
var defaultBinding = Binding{
	Name:             "default",
	CleanObservation: cleanIdentity,
	VictoryText:      defaultVictoryText,
	GameOverText:     defaultGameOverText,
	SelfObject:       20,
	IgnoreMovedObj:   ignoreNone,
	IgnoreAttrSet:    ignoreNone,
	IgnoreAttrClear:  ignoreNone,
}

// bindings is keyed by the story filename stem ("zork1" for zork1.z5). The
// memory addresses were recovered by watching each title's counters move.
var bindings = map[string]Binding{
	"zork1": {
		Name:             "zork1",
		StripInput:       true,
		CleanObservation: cleanSkipFirstLine,
		VictoryText:      "Inside the Barrow",
		GameOverText:     defaultGameOverText,
		SelfObject:       4,
		MaxScore:         350,
		NumWorldObjs:     250,
		Score:            scoreByte(8820),
		Moves:            movesWord(8821),
		IgnoreMovedObj: func(obj, dest uint16) bool {
			return obj == 114 // the thief moves on his own
		},
		IgnoreAttrSet: func(obj, attr uint16) bool {
			if obj == 114 {
				return true
			}
			return obj == 4 && attr == 12
		},
		IgnoreAttrClear: func(obj, attr uint16) bool {
			if (obj == 4 || obj == 114 || obj == 217) && (attr == 1 || attr == 2) {
				return true
			}
			return obj == 4 && attr == 12
		},
	},
	"zork2": {
		Name:             "zork2",
		StripInput:       true,
		CleanObservation: cleanSkipFirstLine,
		VictoryText:      defaultVictoryText,
		GameOverText:     defaultGameOverText,
		SelfObject:       4,
		MaxScore:         400,
		NumWorldObjs:     250,
		Score:            scoreByte(8936),
		Moves:            movesWord(8937),
		IgnoreMovedObj:   ignoreNone,
		IgnoreAttrSet:    ignoreNone,
		IgnoreAttrClear:  ignoreNone,
	},
	"zork3": {
		Name:             "zork3",
		StripInput:       true,
		CleanObservation: cleanSkipFirstLine,
		VictoryText:      defaultVictoryText,
		GameOverText:     defaultGameOverText,
		SelfObject:       202,
		MaxScore:         7,
		NumWorldObjs:     219,
		Score:            scoreUByte(7955),
		Moves:            movesWord(7956),
		IgnoreMovedObj:   ignoreNone,
		IgnoreAttrSet:    ignoreNone,
		IgnoreAttrClear:  ignoreNone,
	},
	"advent": {
		Name:             "advent",
		CleanObservation: cleanAtPrompt,
		VictoryText:      defaultVictoryText,
		GameOverText:     defaultGameOverText,
		SelfObject:       20,
		MaxScore:         350,
		NumWorldObjs:     255,
		Score:            scoreUByte(15372),
		Moves:            movesWord(15361),
		IgnoreMovedObj:   ignoreNone,
		IgnoreAttrSet:    ignoreNone,
		IgnoreAttrClear:  ignoreNone,
	},
	"detective": {
		Name:             "detective",
		CleanObservation: cleanAtPrompt,
		VictoryText:      defaultVictoryText,
		GameOverText:     "*** You have died ***",
		SelfObject:       90,
		MaxScore:         360,
		NumWorldObjs:     101,
		Score:            scoreUByte(6802),
		Moves:            movesWord(6777),
		IgnoreMovedObj:   ignoreNone,
		IgnoreAttrSet: func(obj, attr uint16) bool {
			return attr == 26
		},
		IgnoreAttrClear: func(obj, attr uint16) bool {
			return attr == 26
		},
	},
	"hhgg": {
		Name:             "hhgg",
		StripInput:       true,
		CleanObservation: cleanSkipFirstLine,
		VictoryText:      defaultVictoryText,
		GameOverText:     defaultGameOverText,
		SelfObject:       110,
		MaxScore:         400,
		NumWorldObjs:     255,
		Score:            scoreUByte(7911),
		IgnoreMovedObj:   ignoreNone,
		IgnoreAttrSet:    ignoreNone,
		IgnoreAttrClear:  ignoreNone,
	},
	"sherlock": {
		Name:             "sherlock",
		CleanObservation: cleanIdentity,
		VictoryText:      defaultVictoryText,
		GameOverText:     defaultGameOverText,
		SelfObject:       22,
		MaxScore:         100,
		NumWorldObjs:     255,
		Score:            scoreUByte(739),
		IgnoreMovedObj:   ignoreNone,
		IgnoreAttrSet:    ignoreNone,
		IgnoreAttrClear:  ignoreNone,
	},
	"lurking": {
		Name: "lurking",
		IntroActions: []string{
			"sit on chair",
			"turn pc on",
			"login 872325412",
			"password uhlersoth",
		},
		StripInput:       true,
		CleanObservation: cleanSkipFirstLine,
		VictoryText:      defaultVictoryText,
		GameOverText:     defaultGameOverText,
		SelfObject:       56,
		MaxScore:         100,
		NumWorldObjs:     252,
		Score:            scoreUByte(695),
		Moves:            movesWord(696),
		IgnoreMovedObj:   ignoreNone,
		IgnoreAttrSet:    ignoreNone,
		IgnoreAttrClear:  ignoreNone,
	},
}

// textworldBinding covers machine-generated stories, whose stems all start
// with "tw-". Their counters live in the status line rather than at fixed
// addresses.
var textworldBinding = Binding{
	Name:             "textworld",
	CleanObservation: cleanAtPrompt,
	VictoryText:      "*** The End ***",
	GameOverText:     "*** You lost! ***",
	IgnoreMovedObj:   ignoreNone,
	IgnoreAttrSet: func(obj, attr uint16) bool {
		return attr == 35 || attr == 31
	},
	IgnoreAttrClear: func(obj, attr uint16) bool {
		return attr == 35 || attr == 31
	},
}

// lookupBinding resolves a story filename stem to its binding row.
func lookupBinding(stem string) Binding {
	if b, ok := bindings[stem]; ok {
		return b
	}
	if strings.HasPrefix(stem, "tw-") {
		return textworldBinding
	}
	return defaultBinding
}

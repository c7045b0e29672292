package zstring

import "github.com/tlgreaves/grue/zcore"

// Default translations for the extra ZSCII characters 155..223, per table 1
// of the Standard. Stories may override these with a Unicode translation
// table in the header extension.
var defaultExtended = []rune{
	'ä', 'ö', 'ü', 'Ä', 'Ö', 'Ü', 'ß', '»', '«', 'ë',
	'ï', 'ÿ', 'Ë', 'Ï', 'á', 'é', 'í', 'ó', 'ú', 'ý',
	'Á', 'É', 'Í', 'Ó', 'Ú', 'Ý', 'à', 'è', 'ì', 'ò',
	'ù', 'À', 'È', 'Ì', 'Ò', 'Ù', 'â', 'ê', 'î', 'ô',
	'û', 'Â', 'Ê', 'Î', 'Ô', 'Û', 'å', 'Å', 'ø', 'Ø',
	'ã', 'ñ', 'õ', 'Ã', 'Ñ', 'Õ', 'æ', 'Æ', 'ç', 'Ç',
	'þ', 'ð', 'Þ', 'Ð', '£', 'œ', 'Œ', '¡', '¿',
}

// ZsciiToRune translates one ZSCII output character to Unicode.
func ZsciiToRune(c uint8, core *zcore.Core) rune {
	switch {
	case c == 0:
		return 0
	case c == 9:
		return '\t'
	case c == 11:
		return ' ' // sentence gap
	case c == 13:
		return '\n'
	case c >= 32 && c <= 126:
		return rune(c)
	case c >= 155 && c <= 251:
		if core != nil && core.UnicodeTableBase != 0 {
			count := core.ReadByte(uint32(core.UnicodeTableBase))
			if c-155 < count {
				return rune(core.ReadWord(uint32(core.UnicodeTableBase) + 1 + 2*uint32(c-155)))
			}
			return '?'
		}
		if int(c-155) < len(defaultExtended) {
			return defaultExtended[c-155]
		}
		return '?'
	default:
		return '?'
	}
}

// RuneToZscii translates a Unicode input character to ZSCII. ok is false for
// characters the machine has no code for.
func RuneToZscii(r rune, core *zcore.Core) (uint8, bool) {
	switch {
	case r == '\n' || r == '\r':
		return 13, true
	case r >= 32 && r <= 126:
		return uint8(r), true
	}

	if core != nil && core.UnicodeTableBase != 0 {
		count := core.ReadByte(uint32(core.UnicodeTableBase))
		for i := uint8(0); i < count && i <= 96; i++ {
			if rune(core.ReadWord(uint32(core.UnicodeTableBase)+1+2*uint32(i))) == r {
				return 155 + i, true
			}
		}
		return 0, false
	}

	for i, candidate := range defaultExtended {
		if candidate == r {
			return uint8(155 + i), true
		}
	}
	return 0, false
}

// CanOutput reports whether a Unicode character can be printed by the
// current translation tables, for check_unicode.
func CanOutput(r rune, core *zcore.Core) bool {
	if r >= 32 && r <= 126 {
		return true
	}
	_, ok := RuneToZscii(r, core)
	return ok
}

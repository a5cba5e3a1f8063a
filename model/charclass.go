package model

// Character class ids. These are embedded in CRF feature keys, so they must
// match the ids used when the weight tables were trained.
const (
	ClassOther     uint8 = 0
	ClassSpace     uint8 = 1
	ClassDigit     uint8 = 2
	ClassAlpha     uint8 = 3
	ClassHiragana  uint8 = 4
	ClassKatakana  uint8 = 5
	ClassKanji     uint8 = 6
	ClassFullwidth uint8 = 7
	ClassSymbol    uint8 = 8

	// UTF-8 byte-length buckets for the language-independent mode.
	ClassUTF8TwoByte   uint8 = 9
	ClassUTF8ThreeByte uint8 = 10
	ClassUTF8FourByte  uint8 = 11

	// Virtual classes for the sentence edges.
	ClassBOS uint8 = 250
	ClassEOS uint8 = 251
)

// Character classification modes, selected by the model header.
const (
	CCModeASCII   uint8 = 0 // classify ASCII only, everything else Other
	CCModeUTF8Len uint8 = 1 // bucket non-ASCII by UTF-8 byte length
	CCModeRanges  uint8 = 2 // model-supplied code point ranges
	CCModeCompat  uint8 = 3 // hard-coded Japanese script ranges
)

type ccConfig struct {
	mode     uint8
	fallback uint8
	ranges   []CCRange
}

func classASCII(r rune) uint8 {
	switch {
	case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		return ClassSpace
	case r >= '0' && r <= '9':
		return ClassDigit
	case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		return ClassAlpha
	default:
		return ClassSymbol
	}
}

func classUTF8Len(r rune) uint8 {
	switch {
	case r <= 0x7F:
		return classASCII(r)
	case r <= 0x7FF:
		return ClassUTF8TwoByte
	case r <= 0xFFFF:
		return ClassUTF8ThreeByte
	default:
		return ClassUTF8FourByte
	}
}

func classJapanese(r rune) uint8 {
	switch {
	case r >= 0x3040 && r <= 0x309F:
		return ClassHiragana
	case r >= 0x30A0 && r <= 0x30FF:
		return ClassKatakana
	case r >= 0x4E00 && r <= 0x9FFF:
		return ClassKanji
	case r >= 0xFF00 && r <= 0xFFEF:
		return ClassFullwidth
	default:
		return ClassOther
	}
}

func (cc ccConfig) classRanges(r rune) uint8 {
	lo, hi := 0, len(cc.ranges)
	if hi <= 8 {
		for _, rg := range cc.ranges {
			if uint32(r) >= rg.Lo && uint32(r) <= rg.Hi {
				return rg.Class
			}
		}
		return ClassOther
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		rg := cc.ranges[mid]
		switch {
		case uint32(r) < rg.Lo:
			hi = mid
		case uint32(r) > rg.Hi:
			lo = mid + 1
		default:
			return rg.Class
		}
	}
	return ClassOther
}

// CharClass maps a code point to its class under the model's configured
// classification mode. ASCII classifies the same way in every mode, and the
// lossless whitespace meta characters always classify as space.
func (m *Model) CharClass(r rune) uint8 {
	if r >= LosslessEscape && r <= LosslessCR {
		return ClassSpace
	}
	if r <= 0x7F {
		return classASCII(r)
	}
	switch m.cc.mode {
	case CCModeASCII:
		return ClassOther
	case CCModeUTF8Len:
		return classUTF8Len(r)
	case CCModeRanges:
		if c := m.cc.classRanges(r); c != ClassOther {
			return c
		}
		if m.cc.fallback == CCModeUTF8Len {
			return classUTF8Len(r)
		}
		return ClassOther
	case CCModeCompat:
		return classJapanese(r)
	default:
		return ClassOther
	}
}

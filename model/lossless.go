package model

import (
	"strings"
	"unicode/utf8"
)

// Lossless whitespace meta characters. Models built with FlagLosslessWS were
// trained on text with whitespace mapped to these block characters;
// LosslessEncode and LosslessDecode convert between the two forms with no
// information loss.
const (
	LosslessEscape rune = 0x2580 // ▀ escapes a literal meta character
	LosslessSpace  rune = 0x2581 // ▁ space
	LosslessTab    rune = 0x2582 // ▂ tab
	LosslessLF     rune = 0x2583 // ▃ line feed
	LosslessCR     rune = 0x2584 // ▄ carriage return
)

// LosslessEncode maps whitespace to meta characters: space to ▁ and tab to
// ▂, plus LF to ▃ and CR to ▄ when newlines is true. A literal meta
// character in the input is escaped as ▀ followed by the character. Bytes
// that do not decode as UTF-8 pass through unchanged, so the transform is
// total over arbitrary input.
func LosslessEncode(text string, newlines bool) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(text[i])
			i++
			continue
		}
		switch {
		case r == ' ':
			b.WriteRune(LosslessSpace)
		case r == '\t':
			b.WriteRune(LosslessTab)
		case newlines && r == '\n':
			b.WriteRune(LosslessLF)
		case newlines && r == '\r':
			b.WriteRune(LosslessCR)
		case r >= LosslessEscape && r <= LosslessCR:
			b.WriteRune(LosslessEscape)
			b.WriteRune(r)
		default:
			b.WriteString(text[i : i+size])
		}
		i += size
	}
	return b.String()
}

// LosslessDecode reverses LosslessEncode: meta characters become the
// whitespace they stand for and ▀-escapes are unwrapped. A trailing ▀, or
// one followed by a byte that does not decode, stays literal.
func LosslessDecode(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(text[i])
			i++
			continue
		}
		i += size
		switch r {
		case LosslessSpace:
			b.WriteByte(' ')
		case LosslessTab:
			b.WriteByte('\t')
		case LosslessLF:
			b.WriteByte('\n')
		case LosslessCR:
			b.WriteByte('\r')
		case LosslessEscape:
			if i < len(text) {
				nr, nsize := utf8.DecodeRuneInString(text[i:])
				if !(nr == utf8.RuneError && nsize == 1) {
					b.WriteString(text[i : i+nsize])
					i += nsize
					continue
				}
			}
			b.WriteRune(LosslessEscape)
		default:
			b.WriteString(text[i-size : i])
		}
	}
	return b.String()
}

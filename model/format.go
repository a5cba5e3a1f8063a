// Package model loads, encodes and patches the MMJP binary model format.
//
// A loaded Model is immutable and may be shared by any number of concurrent
// decode calls without locking.
package model

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic numbers. v1 models are recognized and rejected: their header lacks
// the v2 flag and char-class fields.
const (
	Magic   = "MMJPv2\x00\x00"
	MagicV1 = "MMJPv1\x00\x00"

	// Version is the only supported format version.
	Version = 2

	// indexWidth is the serialized width of one trie BASE/CHECK entry.
	indexWidth = 4
)

// Header field offsets. All multi-byte fields are little-endian.
const (
	offMagic        = 0  // [8]byte
	offVersion      = 8  // uint32
	offIndexWidth   = 12 // uint32
	offTrieSize     = 16 // uint32, number of BASE/CHECK entries
	offVocabSize    = 20 // uint32
	offMaxWordLen   = 24 // uint32, code points
	offUnkBase      = 28 // int16 Q8.8
	offUnkPerChar   = 30 // int16 Q8.8
	offLambda0      = 32 // int16 Q8.8
	offTrans00      = 34 // int16 Q8.8
	offTrans01      = 36
	offTrans10      = 38
	offTrans11      = 40
	offBOSTrans     = 42
	offFeatCount    = 44 // uint32
	offBigramCount  = 48 // uint32
	offFlags        = 52 // uint32
	offCCMode       = 56 // uint8
	offCCFallback   = 57 // uint8
	offCCRangeCount = 60 // uint32

	// HeaderSize is the fixed header length; variable-length arrays follow.
	HeaderSize = 64
)

// Model flags.
const (
	FlagLosslessWS uint32 = 1 << 0
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrCorruptModel indicates bad magic, truncated data or malformed fields.
	ErrCorruptModel = errors.New("model: corrupt model data")

	// ErrUnsupportedVersion indicates a recognized but unsupported format.
	ErrUnsupportedVersion = errors.New("model: unsupported model version")

	// ErrOutOfRange indicates a hyperparameter outside its storage width.
	ErrOutOfRange = errors.New("model: value out of range")
)

// qScale converts a Q8.8 fixed-point integer to its real value.
const qScale = 256.0

// QToFloat converts a Q8.8 stored integer to a float64.
func QToFloat(q int16) float64 { return float64(q) / qScale }

// reader provides bounds-checked little-endian field access over a raw
// buffer. Every accessor fails with ErrCorruptModel instead of reading out
// of bounds.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remain() int { return len(r.buf) - r.pos }

func (r *reader) u32(at int) (uint32, error) {
	if at < 0 || at+4 > len(r.buf) {
		return 0, fmt.Errorf("%w: truncated at offset %d", ErrCorruptModel, at)
	}
	return binary.LittleEndian.Uint32(r.buf[at:]), nil
}

func (r *reader) i16(at int) (int16, error) {
	if at < 0 || at+2 > len(r.buf) {
		return 0, fmt.Errorf("%w: truncated at offset %d", ErrCorruptModel, at)
	}
	return int16(binary.LittleEndian.Uint16(r.buf[at:])), nil
}

func (r *reader) u8(at int) (uint8, error) {
	if at < 0 || at >= len(r.buf) {
		return 0, fmt.Errorf("%w: truncated at offset %d", ErrCorruptModel, at)
	}
	return r.buf[at], nil
}

// i32Array reads n little-endian int32 values from the running position.
func (r *reader) i32Array(n int) ([]int32, error) {
	if n < 0 || r.remain() < 4*n {
		return nil, fmt.Errorf("%w: truncated array (%d entries)", ErrCorruptModel, n)
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(r.buf[r.pos:]))
		r.pos += 4
	}
	return out, nil
}

func (r *reader) i16Array(n int) ([]int16, error) {
	if n < 0 || r.remain() < 2*n {
		return nil, fmt.Errorf("%w: truncated array (%d entries)", ErrCorruptModel, n)
	}
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(r.buf[r.pos:]))
		r.pos += 2
	}
	return out, nil
}

func (r *reader) u32Array(n int) ([]uint32, error) {
	if n < 0 || r.remain() < 4*n {
		return nil, fmt.Errorf("%w: truncated array (%d entries)", ErrCorruptModel, n)
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(r.buf[r.pos:])
		r.pos += 4
	}
	return out, nil
}

// FeatKey packs a CRF emission feature (template, label, v1, v2) into the
// 32-bit table key.
func FeatKey(template, label, v1, v2 uint8) uint32 {
	return uint32(template)<<24 | uint32(label)<<16 | uint32(v1)<<8 | uint32(v2)
}

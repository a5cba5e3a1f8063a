package model

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/mmjp/go-mmjp/trie"
)

// Word id sentinels, shared with the trie encoding.
const (
	IDNone uint16 = 0xFFFF // no dictionary entry / unknown
	IDBOS  uint16 = 0xFFFE // virtual beginning-of-sentence word
)

// CCRange maps an inclusive code point range to a character class.
type CCRange struct {
	Lo, Hi uint32
	Class  uint8
}

// Model is the fully parsed, immutable model. All tables keep their stored
// Q8.8 integer representation; conversion to float happens at the point of
// use.
type Model struct {
	// Interpolation weight between dictionary and character evidence,
	// stored Q8.8.
	Lambda0Q int16

	// MaxWordLen caps dictionary spans, in code points.
	MaxWordLen int

	Flags uint32

	// Dictionary language model.
	Trie        *trie.Trie
	Unigram     []int16 // Q8.8 log-prob per word id
	UnkBase     int16   // Q8.8 unknown-word base penalty
	UnkPerChar  int16   // Q8.8 per-code-point unknown penalty
	BigramKeys  []uint32
	BigramLogPQ []int16

	// Character-level CRF tables.
	FeatKeys []uint32
	FeatW    []int16
	Trans00  int16
	Trans01  int16
	Trans10  int16
	Trans11  int16
	BOSTrans int16

	cc ccConfig
}

// Load reads and parses a model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return Decode(data)
}

// Decode parses a model from an in-memory buffer. The returned Model does
// not alias data; callers may reuse the buffer.
func Decode(data []byte) (*Model, error) {
	r := &reader{buf: data}
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d byte header",
			ErrCorruptModel, len(data), HeaderSize)
	}

	magic := data[offMagic : offMagic+8]
	switch {
	case bytes.Equal(magic, []byte(Magic)):
	case bytes.Equal(magic, []byte(MagicV1)):
		return nil, fmt.Errorf("%w: v1 model", ErrUnsupportedVersion)
	default:
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptModel)
	}

	version, err := r.u32(offVersion)
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}
	width, err := r.u32(offIndexWidth)
	if err != nil {
		return nil, err
	}
	if width != indexWidth {
		return nil, fmt.Errorf("%w: trie index width %d", ErrCorruptModel, width)
	}

	trieN, err := r.u32(offTrieSize)
	if err != nil {
		return nil, err
	}
	vocab, err := r.u32(offVocabSize)
	if err != nil {
		return nil, err
	}
	maxWordLen, err := r.u32(offMaxWordLen)
	if err != nil {
		return nil, err
	}
	if trieN < 2 || vocab == 0 || maxWordLen == 0 {
		return nil, fmt.Errorf("%w: implausible sizes (trie=%d vocab=%d maxlen=%d)",
			ErrCorruptModel, trieN, vocab, maxWordLen)
	}

	m := &Model{MaxWordLen: int(maxWordLen)}
	if m.UnkBase, err = r.i16(offUnkBase); err != nil {
		return nil, err
	}
	if m.UnkPerChar, err = r.i16(offUnkPerChar); err != nil {
		return nil, err
	}
	if m.Lambda0Q, err = r.i16(offLambda0); err != nil {
		return nil, err
	}
	if m.Trans00, err = r.i16(offTrans00); err != nil {
		return nil, err
	}
	if m.Trans01, err = r.i16(offTrans01); err != nil {
		return nil, err
	}
	if m.Trans10, err = r.i16(offTrans10); err != nil {
		return nil, err
	}
	if m.Trans11, err = r.i16(offTrans11); err != nil {
		return nil, err
	}
	if m.BOSTrans, err = r.i16(offBOSTrans); err != nil {
		return nil, err
	}

	featN, err := r.u32(offFeatCount)
	if err != nil {
		return nil, err
	}
	biN, err := r.u32(offBigramCount)
	if err != nil {
		return nil, err
	}
	if m.Flags, err = r.u32(offFlags); err != nil {
		return nil, err
	}
	ccMode, err := r.u8(offCCMode)
	if err != nil {
		return nil, err
	}
	ccFallback, err := r.u8(offCCFallback)
	if err != nil {
		return nil, err
	}
	ccRangeN, err := r.u32(offCCRangeCount)
	if err != nil {
		return nil, err
	}

	// Reject counts the remaining bytes cannot possibly hold before
	// allocating anything sized by them.
	body := int64(len(data) - HeaderSize)
	need := int64(trieN)*8 + int64(vocab)*2 + int64(biN)*6 + int64(featN)*6 + int64(ccRangeN)*12
	if need > body {
		return nil, fmt.Errorf("%w: body needs %d bytes, have %d", ErrCorruptModel, need, body)
	}

	r.pos = HeaderSize
	base, err := r.i32Array(int(trieN))
	if err != nil {
		return nil, err
	}
	check, err := r.i32Array(int(trieN))
	if err != nil {
		return nil, err
	}
	// Trust-on-load: trie well-formedness is not re-validated here; invalid
	// transitions surface as lookup misses.
	if m.Trie, err = trie.New(base, check); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}

	if m.Unigram, err = r.i16Array(int(vocab)); err != nil {
		return nil, err
	}
	if biN > 0 {
		if m.BigramKeys, err = r.u32Array(int(biN)); err != nil {
			return nil, err
		}
		if m.BigramLogPQ, err = r.i16Array(int(biN)); err != nil {
			return nil, err
		}
	}
	if featN > 0 {
		if m.FeatKeys, err = r.u32Array(int(featN)); err != nil {
			return nil, err
		}
		if m.FeatW, err = r.i16Array(int(featN)); err != nil {
			return nil, err
		}
	}

	ranges := make([]CCRange, 0, ccRangeN)
	for i := uint32(0); i < ccRangeN; i++ {
		if r.remain() < 12 {
			return nil, fmt.Errorf("%w: truncated char-class range", ErrCorruptModel)
		}
		lo, err := r.u32(r.pos)
		if err != nil {
			return nil, err
		}
		hi, err := r.u32(r.pos + 4)
		if err != nil {
			return nil, err
		}
		class, err := r.u8(r.pos + 8)
		if err != nil {
			return nil, err
		}
		r.pos += 12
		ranges = append(ranges, CCRange{Lo: lo, Hi: hi, Class: class})
	}
	m.cc = ccConfig{mode: ccMode, fallback: ccFallback, ranges: ranges}

	return m, nil
}

// Lambda0 returns the effective interpolation weight (stored Q8.8 / 256).
func (m *Model) Lambda0() float64 { return QToFloat(m.Lambda0Q) }

// UnigramLogP returns the dictionary log-probability for a word id, or the
// unknown-word penalty unkBase + unkPerChar*lenCP when the id has no table
// entry.
func (m *Model) UnigramLogP(id uint16, lenCP int) float64 {
	if id != IDNone && id != IDBOS && int(id) < len(m.Unigram) {
		return QToFloat(m.Unigram[id])
	}
	v := int32(m.UnkBase) + int32(m.UnkPerChar)*int32(lenCP)
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return QToFloat(int16(v))
}

// BigramLogP returns the bigram log-probability for (prev, cur), backing off
// to the supplied unigram value when the pair has no table entry.
func (m *Model) BigramLogP(prev, cur uint16, backoff float64) float64 {
	if len(m.BigramKeys) == 0 || prev == IDNone || cur == IDNone {
		return backoff
	}
	key := uint32(prev)<<16 | uint32(cur)
	i := sort.Search(len(m.BigramKeys), func(i int) bool { return m.BigramKeys[i] >= key })
	if i < len(m.BigramKeys) && m.BigramKeys[i] == key {
		return QToFloat(m.BigramLogPQ[i])
	}
	return backoff
}

// FeatWeight returns the emission weight for a packed feature key, 0 when
// the key is absent.
func (m *Model) FeatWeight(key uint32) int16 {
	i := sort.Search(len(m.FeatKeys), func(i int) bool { return m.FeatKeys[i] >= key })
	if i < len(m.FeatKeys) && m.FeatKeys[i] == key {
		return m.FeatW[i]
	}
	return 0
}

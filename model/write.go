package model

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes a Model into the v2 binary format. It is the write-side
// counterpart of Decode, used by offline tooling and tests; the byte layout
// matches what trained models ship with, so an Encode/Decode round trip is
// lossless.
func Encode(m *Model) ([]byte, error) {
	if m == nil || m.Trie == nil {
		return nil, fmt.Errorf("%w: nil model or trie", ErrCorruptModel)
	}
	if len(m.Unigram) == 0 || m.MaxWordLen <= 0 {
		return nil, fmt.Errorf("%w: empty unigram table or max word length", ErrCorruptModel)
	}
	if len(m.BigramKeys) != len(m.BigramLogPQ) {
		return nil, fmt.Errorf("%w: bigram key/value length mismatch", ErrCorruptModel)
	}
	if len(m.FeatKeys) != len(m.FeatW) {
		return nil, fmt.Errorf("%w: feature key/weight length mismatch", ErrCorruptModel)
	}

	base, check := m.Trie.Arrays()
	size := HeaderSize +
		8*len(base) +
		2*len(m.Unigram) +
		6*len(m.BigramKeys) +
		6*len(m.FeatKeys) +
		12*len(m.cc.ranges)
	buf := make([]byte, size)

	copy(buf[offMagic:], Magic)
	le := binary.LittleEndian
	le.PutUint32(buf[offVersion:], Version)
	le.PutUint32(buf[offIndexWidth:], indexWidth)
	le.PutUint32(buf[offTrieSize:], uint32(len(base)))
	le.PutUint32(buf[offVocabSize:], uint32(len(m.Unigram)))
	le.PutUint32(buf[offMaxWordLen:], uint32(m.MaxWordLen))
	le.PutUint16(buf[offUnkBase:], uint16(m.UnkBase))
	le.PutUint16(buf[offUnkPerChar:], uint16(m.UnkPerChar))
	le.PutUint16(buf[offLambda0:], uint16(m.Lambda0Q))
	le.PutUint16(buf[offTrans00:], uint16(m.Trans00))
	le.PutUint16(buf[offTrans01:], uint16(m.Trans01))
	le.PutUint16(buf[offTrans10:], uint16(m.Trans10))
	le.PutUint16(buf[offTrans11:], uint16(m.Trans11))
	le.PutUint16(buf[offBOSTrans:], uint16(m.BOSTrans))
	le.PutUint32(buf[offFeatCount:], uint32(len(m.FeatKeys)))
	le.PutUint32(buf[offBigramCount:], uint32(len(m.BigramKeys)))
	le.PutUint32(buf[offFlags:], m.Flags)
	buf[offCCMode] = m.cc.mode
	buf[offCCFallback] = m.cc.fallback
	le.PutUint32(buf[offCCRangeCount:], uint32(len(m.cc.ranges)))

	p := HeaderSize
	for _, v := range base {
		le.PutUint32(buf[p:], uint32(v))
		p += 4
	}
	for _, v := range check {
		le.PutUint32(buf[p:], uint32(v))
		p += 4
	}
	for _, v := range m.Unigram {
		le.PutUint16(buf[p:], uint16(v))
		p += 2
	}
	for _, k := range m.BigramKeys {
		le.PutUint32(buf[p:], k)
		p += 4
	}
	for _, v := range m.BigramLogPQ {
		le.PutUint16(buf[p:], uint16(v))
		p += 2
	}
	for _, k := range m.FeatKeys {
		le.PutUint32(buf[p:], k)
		p += 4
	}
	for _, v := range m.FeatW {
		le.PutUint16(buf[p:], uint16(v))
		p += 2
	}
	for _, rg := range m.cc.ranges {
		le.PutUint32(buf[p:], rg.Lo)
		le.PutUint32(buf[p+4:], rg.Hi)
		buf[p+8] = rg.Class
		p += 12
	}

	return buf, nil
}

// SetCharClasses configures the classification mode and ranges on a model
// under construction. Loaded models receive these from the header.
func (m *Model) SetCharClasses(mode, fallback uint8, ranges []CCRange) {
	m.cc = ccConfig{mode: mode, fallback: fallback, ranges: ranges}
}

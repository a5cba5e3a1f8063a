package model

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmjp/go-mmjp/trie"
)

// testModel builds a small but complete model in memory.
func testModel(t *testing.T) *Model {
	t.Helper()
	b := trie.NewBuilder()
	words := []struct {
		w  string
		id uint16
	}{
		{"東京", 0},
		{"東京都", 1},
		{"京都", 2},
		{"都", 3},
	}
	for _, e := range words {
		if err := b.Add(e.w, e.id); err != nil {
			t.Fatalf("Add(%q): %v", e.w, err)
		}
	}

	m := &Model{
		Lambda0Q:    192, // 0.75
		MaxWordLen:  4,
		Flags:       FlagLosslessWS,
		Trie:        b.Build(),
		Unigram:     []int16{-256, -384, -307, -512},
		UnkBase:     -2048,
		UnkPerChar:  -512,
		BigramKeys:  []uint32{uint32(0)<<16 | 3},
		BigramLogPQ: []int16{-26},
		FeatKeys: []uint32{
			FeatKey(0, 0, ClassKanji, 0),
			FeatKey(0, 1, ClassKanji, 0),
			FeatKey(3, 1, ClassKanji, ClassHiragana),
		},
		FeatW:    []int16{10, 20, 30},
		Trans00:  -10,
		Trans01:  -20,
		Trans10:  -30,
		Trans11:  -40,
		BOSTrans: -5,
	}
	m.SetCharClasses(CCModeCompat, 0, nil)
	return m
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := testModel(t)
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Lambda0Q != m.Lambda0Q {
		t.Errorf("Lambda0Q = %d, want %d", got.Lambda0Q, m.Lambda0Q)
	}
	if got.Lambda0() != 0.75 {
		t.Errorf("Lambda0() = %v, want 0.75", got.Lambda0())
	}
	if got.MaxWordLen != m.MaxWordLen {
		t.Errorf("MaxWordLen = %d, want %d", got.MaxWordLen, m.MaxWordLen)
	}
	if got.Flags != m.Flags {
		t.Errorf("Flags = %d, want %d", got.Flags, m.Flags)
	}
	if got.UnkBase != m.UnkBase || got.UnkPerChar != m.UnkPerChar {
		t.Errorf("unk = (%d, %d), want (%d, %d)",
			got.UnkBase, got.UnkPerChar, m.UnkBase, m.UnkPerChar)
	}
	if got.Trans00 != m.Trans00 || got.Trans01 != m.Trans01 ||
		got.Trans10 != m.Trans10 || got.Trans11 != m.Trans11 || got.BOSTrans != m.BOSTrans {
		t.Error("transition weights did not round trip")
	}

	for _, w := range []string{"東京", "東京都", "京都", "都"} {
		if _, ok := got.Trie.LookupExact(w); !ok {
			t.Errorf("decoded trie lost key %q", w)
		}
	}
	if got.BigramLogP(0, 3, -99) != QToFloat(-26) {
		t.Errorf("bigram (0,3) = %v, want %v", got.BigramLogP(0, 3, -99), QToFloat(-26))
	}
	if got.FeatWeight(FeatKey(0, 1, ClassKanji, 0)) != 20 {
		t.Errorf("feature weight = %d, want 20", got.FeatWeight(FeatKey(0, 1, ClassKanji, 0)))
	}
}

func TestLoad(t *testing.T) {
	data, err := Encode(testModel(t))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "test.mmjp")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.MaxWordLen != 4 {
		t.Errorf("MaxWordLen = %d, want 4", m.MaxWordLen)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	data, _ := Encode(testModel(t))
	data[0] = 'X'
	if _, err := Decode(data); !errors.Is(err, ErrCorruptModel) {
		t.Errorf("bad magic: got %v, want ErrCorruptModel", err)
	}
}

func TestDecodeV1Rejected(t *testing.T) {
	data, _ := Encode(testModel(t))
	copy(data, MagicV1)
	if _, err := Decode(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("v1 magic: got %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeUnknownVersion(t *testing.T) {
	data, _ := Encode(testModel(t))
	binary.LittleEndian.PutUint32(data[offVersion:], 99)
	if _, err := Decode(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("version 99: got %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data, _ := Encode(testModel(t))
	for _, n := range []int{0, 8, HeaderSize - 1, HeaderSize, HeaderSize + 5, len(data) - 1} {
		if _, err := Decode(data[:n]); !errors.Is(err, ErrCorruptModel) {
			t.Errorf("truncation to %d bytes: got %v, want ErrCorruptModel", n, err)
		}
	}
}

func TestDecodeImplausibleCounts(t *testing.T) {
	data, _ := Encode(testModel(t))
	// A giant trie size must be rejected before any allocation happens.
	binary.LittleEndian.PutUint32(data[offTrieSize:], 0x7FFFFFFF)
	if _, err := Decode(data); !errors.Is(err, ErrCorruptModel) {
		t.Errorf("huge trie size: got %v, want ErrCorruptModel", err)
	}
}

func TestUnigramLogP(t *testing.T) {
	m := testModel(t)
	if got := m.UnigramLogP(0, 2); got != QToFloat(-256) {
		t.Errorf("known word: %v, want %v", got, QToFloat(-256))
	}
	// Unknown ids get the length-scaled penalty.
	want := QToFloat(-2048 + -512*3)
	if got := m.UnigramLogP(IDNone, 3); got != want {
		t.Errorf("unknown word: %v, want %v", got, want)
	}
	// Extreme lengths clamp instead of wrapping.
	if got := m.UnigramLogP(IDNone, 1000); got != QToFloat(-32768) {
		t.Errorf("clamped penalty: %v, want %v", got, QToFloat(-32768))
	}
}

func TestBigramBackoff(t *testing.T) {
	m := testModel(t)
	if got := m.BigramLogP(1, 2, -7.5); got != -7.5 {
		t.Errorf("unseen pair: %v, want backoff -7.5", got)
	}
	if got := m.BigramLogP(IDNone, 3, -7.5); got != -7.5 {
		t.Errorf("unknown prev: %v, want backoff -7.5", got)
	}
}

func TestFeatWeightMissing(t *testing.T) {
	m := testModel(t)
	if got := m.FeatWeight(FeatKey(4, 1, ClassDigit, ClassAlpha)); got != 0 {
		t.Errorf("missing key: %d, want 0", got)
	}
}

func TestCharClassModes(t *testing.T) {
	m := testModel(t) // compat mode
	tests := []struct {
		r    rune
		want uint8
	}{
		{'あ', ClassHiragana},
		{'ア', ClassKatakana},
		{'東', ClassKanji},
		{'Ａ', ClassFullwidth},
		{'a', ClassAlpha},
		{'7', ClassDigit},
		{' ', ClassSpace},
		{'.', ClassSymbol},
		{'▀', ClassSpace}, // lossless whitespace meta
		{'▄', ClassSpace},
		{'é', ClassOther},
	}
	for _, tt := range tests {
		if got := m.CharClass(tt.r); got != tt.want {
			t.Errorf("CharClass(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestCharClassUTF8LenMode(t *testing.T) {
	m := testModel(t)
	m.SetCharClasses(CCModeUTF8Len, 0, nil)
	tests := []struct {
		r    rune
		want uint8
	}{
		{'é', ClassUTF8TwoByte},
		{'東', ClassUTF8ThreeByte},
		{'\U0001F600', ClassUTF8FourByte},
		{'a', ClassAlpha},
	}
	for _, tt := range tests {
		if got := m.CharClass(tt.r); got != tt.want {
			t.Errorf("CharClass(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestCharClassRangesMode(t *testing.T) {
	m := testModel(t)
	m.SetCharClasses(CCModeRanges, CCModeUTF8Len, []CCRange{
		{Lo: 0x3040, Hi: 0x309F, Class: ClassHiragana},
		{Lo: 0x4E00, Hi: 0x9FFF, Class: ClassKanji},
	})
	if got := m.CharClass('あ'); got != ClassHiragana {
		t.Errorf("CharClass(あ) = %d, want hiragana", got)
	}
	// Outside every range falls back to the UTF-8 length bucket.
	if got := m.CharClass('ア'); got != ClassUTF8ThreeByte {
		t.Errorf("CharClass(ア) = %d, want 3-byte bucket", got)
	}
}

func TestCharClassRangesRoundTrip(t *testing.T) {
	m := testModel(t)
	ranges := []CCRange{
		{Lo: 0x3040, Hi: 0x309F, Class: ClassHiragana},
		{Lo: 0x30A0, Hi: 0x30FF, Class: ClassKatakana},
	}
	m.SetCharClasses(CCModeRanges, CCModeUTF8Len, ranges)

	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.CharClass('あ') != ClassHiragana || got.CharClass('ア') != ClassKatakana {
		t.Error("char class ranges did not survive encode/decode")
	}
}

func TestDecodeTruncatedCharClassRange(t *testing.T) {
	m := testModel(t)
	m.SetCharClasses(CCModeRanges, CCModeUTF8Len, []CCRange{
		{Lo: 0x3040, Hi: 0x309F, Class: ClassHiragana},
		{Lo: 0x30A0, Hi: 0x30FF, Class: ClassKatakana},
	})
	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}

	// Cut inside the last range record.
	for _, cut := range []int{1, 5, 11} {
		if _, err := Decode(data[:len(data)-cut]); !errors.Is(err, ErrCorruptModel) {
			t.Errorf("Decode with %d range bytes missing: err = %v, want ErrCorruptModel", cut, err)
		}
	}
}

package mmjp

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/mmjp/go-mmjp/lattice"
	"github.com/mmjp/go-mmjp/model"
)

// sampleStream seeds the second PCG word so that sampling streams are
// disjoint from other users of the same seed.
const sampleStream = 0x6d6d6a70 // "mmjp"

// Token is one segment of the input. Start and End are byte offsets into the
// original text, so concatenating surfaces in order reproduces the input
// exactly. Known is true when the token came from the model dictionary.
type Token struct {
	Surface    string
	Start, End int
	Known      bool
}

// Segmentation is one candidate split of the input with its model score.
type Segmentation struct {
	Tokens []Token
	Score  float64
}

// Segmenter splits unspaced text into words using a packed mmjp model.
// It is safe for concurrent use; all per-call state lives on the stack of
// the calling goroutine.
type Segmenter struct {
	model       *model.Model
	temperature float64
	logger      *slog.Logger
}

// New creates a Segmenter from a model file.
func New(modelPath string, opts ...Option) (*Segmenter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	m, err := model.Load(modelPath)
	if err != nil {
		return nil, err
	}

	return newSegmenter(m, cfg), nil
}

// NewFromBytes creates a Segmenter from an in-memory model image. The buffer
// is not retained.
func NewFromBytes(data []byte, opts ...Option) (*Segmenter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := model.Decode(data)
	if err != nil {
		return nil, err
	}
	return newSegmenter(m, cfg), nil
}

func newSegmenter(m *model.Model, cfg config) *Segmenter {
	cfg.logger.Debug("model loaded",
		"vocab", len(m.Unigram),
		"bigrams", len(m.BigramKeys),
		"features", len(m.FeatKeys),
		"max_word_len", m.MaxWordLen,
		"lambda0", m.Lambda0())
	return &Segmenter{
		model:       m,
		temperature: cfg.temperature,
		logger:      cfg.logger,
	}
}

// Tokenize splits text into words using the maximum-score segmentation.
// The result is deterministic: the same model and input always produce the
// same split. Empty input yields no tokens.
//
// Models built with lossless whitespace segment a meta-character form of the
// input: token offsets index that form, and Detokenize restores the original
// text from the token sequence.
func (s *Segmenter) Tokenize(text string) ([]Token, error) {
	tokens, _, err := s.TokenizeWithScore(text)
	return tokens, err
}

// TokenizeWithScore is Tokenize plus the cumulative log-domain score of the
// chosen segmentation.
func (s *Segmenter) TokenizeWithScore(text string) ([]Token, float64, error) {
	l, _ := s.scoredLattice(text)
	path, score, err := lattice.Viterbi(l)
	if err != nil {
		return nil, 0, err
	}
	return s.pathTokens(l, path), score, nil
}

// Sample draws one random segmentation distributed according to the model,
// sharpened or flattened by the configured temperature. The same seed, model,
// and input always produce the same draw.
func (s *Segmenter) Sample(text string, seed uint64) ([]Token, float64, error) {
	l, _ := s.scoredLattice(text)
	rng := rand.New(rand.NewPCG(seed, sampleStream))
	path, score, err := lattice.Sample(l, rng, s.temperature)
	if err != nil {
		return nil, 0, err
	}
	return s.pathTokens(l, path), score, nil
}

// NBest returns up to n candidate segmentations, best first. Candidates are
// re-ranked with word bigram context where the model carries a bigram table,
// so the top candidate can differ from Tokenize on bigram-heavy models.
func (s *Segmenter) NBest(text string, n int) ([]Segmentation, error) {
	l, sc := s.scoredLattice(text)
	paths, err := lattice.NBest(l, n)
	if err != nil {
		return nil, err
	}
	paths = lattice.Rescore(paths, sc)

	out := make([]Segmentation, len(paths))
	for i, p := range paths {
		out[i] = Segmentation{Tokens: s.pathTokens(l, p.Edges), Score: p.Score}
	}
	return out, nil
}

// Detokenize joins token surfaces back into text. For models built with
// lossless whitespace it also restores the whitespace the meta characters
// stand for, so Detokenize inverts Tokenize exactly.
func (s *Segmenter) Detokenize(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Surface)
	}
	if s.model.Flags&model.FlagLosslessWS != 0 {
		return model.LosslessDecode(b.String())
	}
	return b.String()
}

// Model exposes the loaded model, for inspection tools.
func (s *Segmenter) Model() *model.Model { return s.model }

func (s *Segmenter) scoredLattice(text string) (*lattice.Lattice, *lattice.Scorer) {
	if s.model.Flags&model.FlagLosslessWS != 0 {
		text = model.LosslessEncode(text, false)
	}
	l := lattice.Build(text, s.model)
	sc := lattice.NewScorer(s.model, l)
	sc.ScoreEdges(l)
	return l, sc
}

func (s *Segmenter) pathTokens(l *lattice.Lattice, path []lattice.Edge) []Token {
	if len(path) == 0 {
		return nil
	}
	text := l.Text()
	tokens := make([]Token, len(path))
	for i, e := range path {
		start, end := l.ByteOffset(e.Start), l.ByteOffset(e.End)
		tokens[i] = Token{
			Surface: text[start:end],
			Start:   start,
			End:     end,
			Known:   e.Source == lattice.SourceDictionary,
		}
	}
	return tokens
}

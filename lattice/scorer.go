package lattice

import (
	"unicode/utf8"

	"github.com/mmjp/go-mmjp/model"
)

// CRF label values baked into the feature keys: 1 at a word start, 0 inside.
const (
	labelInside uint8 = 0
	labelStart  uint8 = 1
)

// Scorer assigns log-domain scores to lattice edges for one input:
//
//	score = lambda0*dictTerm + (1-lambda0)*charTerm
//
// dictTerm is the unigram log-probability of the span's word (unknown-word
// penalty for fallback edges); charTerm is the character-generative segment
// score from the model's class-feature tables. Q8.8 table values are
// converted to float here, at the point of use.
type Scorer struct {
	m      *model.Model
	lambda float64

	// Per-position emission scores for the start/inside labels, with a
	// prefix-sum over the inside label so interior sums are O(1) per edge.
	emit1     []float64
	prefEmit0 []float64
}

// NewScorer precomputes per-position emissions for the lattice's input.
func NewScorer(m *model.Model, l *Lattice) *Scorer {
	n := l.Len()
	s := &Scorer{
		m:         m,
		lambda:    m.Lambda0(),
		emit1:     make([]float64, n),
		prefEmit0: make([]float64, n+1),
	}

	classes := make([]uint8, n)
	text := l.Text()
	for i := 0; i < n; i++ {
		r, _ := utf8.DecodeRuneInString(text[l.ByteOffset(i):])
		if r == utf8.RuneError {
			classes[i] = model.ClassOther
		} else {
			classes[i] = m.CharClass(r)
		}
	}

	for i := 0; i < n; i++ {
		prev := model.ClassBOS
		if i > 0 {
			prev = classes[i-1]
		}
		next := model.ClassEOS
		if i+1 < n {
			next = classes[i+1]
		}
		emit0 := s.emit(labelInside, prev, classes[i], next)
		s.emit1[i] = s.emit(labelStart, prev, classes[i], next)
		s.prefEmit0[i+1] = s.prefEmit0[i] + emit0
	}
	return s
}

// emit sums the five feature templates for one position and label. The sum
// is clamped to the int16 range the tables were trained in.
func (s *Scorer) emit(label, prev, cur, next uint8) float64 {
	sum := int32(s.m.FeatWeight(model.FeatKey(0, label, cur, 0)))
	sum += int32(s.m.FeatWeight(model.FeatKey(1, label, prev, 0)))
	sum += int32(s.m.FeatWeight(model.FeatKey(2, label, next, 0)))
	sum += int32(s.m.FeatWeight(model.FeatKey(3, label, prev, cur)))
	sum += int32(s.m.FeatWeight(model.FeatKey(4, label, cur, next)))
	if sum > 32767 {
		sum = 32767
	} else if sum < -32768 {
		sum = -32768
	}
	return model.QToFloat(int16(sum))
}

// CharTerm is the character-generative score of span [start, end): a start
// label followed by inside labels, closing with the transition into the next
// word's start.
func (s *Scorer) CharTerm(start, end int) float64 {
	k := end - start
	if k <= 0 {
		return 0
	}
	if k == 1 {
		return s.emit1[start] + model.QToFloat(s.m.Trans11)
	}
	score := s.emit1[start] + model.QToFloat(s.m.Trans10)
	score += s.prefEmit0[end] - s.prefEmit0[start+1]
	score += float64(k-2) * model.QToFloat(s.m.Trans00)
	score += model.QToFloat(s.m.Trans01)
	return score
}

// DictTerm is the dictionary log-probability of an edge: the unigram table
// entry for dictionary edges, the length-scaled unknown penalty otherwise.
func (s *Scorer) DictTerm(e Edge) float64 {
	id := e.ID
	if e.Source != SourceDictionary {
		id = model.IDNone
	}
	return s.m.UnigramLogP(id, e.End-e.Start)
}

// EdgeScore combines both terms under the model's lambda0.
func (s *Scorer) EdgeScore(e Edge) float64 {
	return s.lambda*s.DictTerm(e) + (1-s.lambda)*s.CharTerm(e.Start, e.End)
}

// Lambda returns the effective interpolation weight in use.
func (s *Scorer) Lambda() float64 { return s.lambda }

// Model returns the model the scorer reads its tables from.
func (s *Scorer) Model() *model.Model { return s.m }

// ScoreEdges fills the Score field of every edge in l.
func (s *Scorer) ScoreEdges(l *Lattice) {
	for pos := 1; pos <= l.Len(); pos++ {
		edges := l.in[pos]
		for i := range edges {
			edges[i].Score = s.EdgeScore(edges[i])
		}
	}
}

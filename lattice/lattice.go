// Package lattice builds the per-request segmentation lattice and decodes it.
//
// A lattice is a DAG over code point positions 0..N of one input. Edges are
// candidate token spans: dictionary hits from the model's trie, plus a
// single-character fallback edge at every position so that any input is
// coverable. Lattices are ephemeral; one is built per decode call.
package lattice

import (
	"unicode/utf8"

	"github.com/mmjp/go-mmjp/model"
)

// Source tags where an edge came from.
type Source uint8

const (
	// SourceDictionary marks a span found in the model dictionary.
	SourceDictionary Source = iota
	// SourceFallback marks the guaranteed single-character edge.
	SourceFallback
)

// Edge is one candidate token span. Start and End are code point positions;
// Score is filled by a Scorer before decoding.
type Edge struct {
	Start, End int
	ID         uint16
	Source     Source
	Score      float64
}

// Lattice holds the incoming-edge adjacency for one input.
type Lattice struct {
	text string
	offs []int    // byte offset of each position, len N+1
	in   [][]Edge // in[p]: edges ending at position p, 1..N
	bos  float64  // BOS transition weight, seeds every decoder's DP
}

// Build constructs the lattice for text against m's dictionary. For every
// position it runs a common-prefix search (capped at the model's max word
// length) and always adds the fallback edge. A byte that does not decode as
// UTF-8 advances one position so decoding stays total.
func Build(text string, m *model.Model) *Lattice {
	offs := make([]int, 0, len(text)+1)
	for i := 0; i < len(text); {
		offs = append(offs, i)
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	offs = append(offs, len(text))
	n := len(offs) - 1

	// Byte offset -> position, for mapping trie match ends back to the
	// position grid. Matches ending inside a code point are discarded.
	posAt := make([]int, len(text)+1)
	for i := range posAt {
		posAt[i] = -1
	}
	for p, off := range offs {
		posAt[off] = p
	}

	l := &Lattice{text: text, offs: offs, in: make([][]Edge, n+1), bos: model.QToFloat(m.BOSTrans)}
	for p := 0; p < n; p++ {
		for _, match := range m.Trie.CommonPrefixSearch(text, offs[p]) {
			q := posAt[match.End]
			if q < 0 {
				continue
			}
			if q-p > m.MaxWordLen {
				break // matches come shortest-first
			}
			l.addEdge(Edge{Start: p, End: q, ID: match.ID, Source: SourceDictionary})
		}
		l.addEdge(Edge{Start: p, End: p + 1, ID: model.IDNone, Source: SourceFallback})
	}
	return l
}

// addEdge appends e unless an edge with the same span and source exists.
func (l *Lattice) addEdge(e Edge) {
	for _, have := range l.in[e.End] {
		if have.Start == e.Start && have.Source == e.Source {
			return
		}
	}
	l.in[e.End] = append(l.in[e.End], e)
}

// Len returns N, the input length in code points.
func (l *Lattice) Len() int { return len(l.offs) - 1 }

// Text returns the input the lattice was built over.
func (l *Lattice) Text() string { return l.text }

// ByteOffset maps a position to its byte offset in the input.
func (l *Lattice) ByteOffset(pos int) int { return l.offs[pos] }

// Incoming returns the edges ending at pos. Callers must not mutate the
// slice structure; Scorer rewrites only the Score fields.
func (l *Lattice) Incoming(pos int) []Edge { return l.in[pos] }

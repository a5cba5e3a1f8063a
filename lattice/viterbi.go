package lattice

import (
	"errors"
	"math"
)

// ErrInconsistentLattice reports a position with no usable incoming edge.
// The fallback edges make this impossible by construction; seeing it means
// the lattice was corrupted after Build.
var ErrInconsistentLattice = errors.New("lattice: position reachable by no edge")

var negInf = math.Inf(-1)

// preferred reports whether e wins a score tie against cur: the edge
// arriving via the longest dictionary span first (dictionary beats fallback,
// lower start means longer span), then the lowest start position. This keeps
// best-path decoding bit-for-bit deterministic.
func preferred(e, cur Edge) bool {
	eDict := e.Source == SourceDictionary
	curDict := cur.Source == SourceDictionary
	if eDict != curDict {
		return eDict
	}
	return e.Start < cur.Start
}

// Viterbi finds the maximum-score path through a scored lattice, returning
// the edges in input order and the best cumulative score. Empty input yields
// an empty path.
func Viterbi(l *Lattice) ([]Edge, float64, error) {
	n := l.Len()
	if n == 0 {
		return nil, 0, nil
	}

	best := make([]float64, n+1)
	chosen := make([]Edge, n+1)
	taken := make([]bool, n+1)
	best[0] = l.bos
	for i := 1; i <= n; i++ {
		best[i] = negInf
	}

	for pos := 1; pos <= n; pos++ {
		for _, e := range l.in[pos] {
			if !taken[e.Start] && e.Start != 0 {
				continue
			}
			cand := best[e.Start] + e.Score
			if cand > best[pos] || (cand == best[pos] && taken[pos] && preferred(e, chosen[pos])) {
				best[pos] = cand
				chosen[pos] = e
				taken[pos] = true
			}
		}
		if !taken[pos] {
			return nil, 0, ErrInconsistentLattice
		}
	}

	path := make([]Edge, 0, n)
	for pos := n; pos > 0; {
		e := chosen[pos]
		path = append(path, e)
		pos = e.Start
	}
	reverse(path)
	return path, best[n], nil
}

func reverse(path []Edge) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}

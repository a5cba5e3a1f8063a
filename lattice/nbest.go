package lattice

import (
	"sort"

	"github.com/mmjp/go-mmjp/model"
)

// Path is one decoded segmentation with its cumulative score.
type Path struct {
	Edges []Edge
	Score float64
}

type cand struct {
	score    float64
	edge     Edge
	prevRank int
}

// better orders candidates for k-best selection: higher score first, ties
// broken the same way Viterbi breaks them, then by the rank of the prefix
// path so the ordering is total and deterministic.
func better(a, b cand) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	aDict := a.edge.Source == SourceDictionary
	bDict := b.edge.Source == SourceDictionary
	if aDict != bDict {
		return aDict
	}
	if a.edge.Start != b.edge.Start {
		return a.edge.Start < b.edge.Start
	}
	return a.prevRank < b.prevRank
}

// NBest returns up to k highest-scoring paths through a scored lattice,
// best first. Rank 0 matches the Viterbi path.
func NBest(l *Lattice, k int) ([]Path, error) {
	n := l.Len()
	if n == 0 || k <= 0 {
		return nil, nil
	}

	// dp[pos] holds the top-k partial paths ending at pos, best first.
	dp := make([][]cand, n+1)
	dp[0] = []cand{{score: l.bos}}
	for pos := 1; pos <= n; pos++ {
		var cands []cand
		for _, e := range l.in[pos] {
			for rank, p := range dp[e.Start] {
				cands = append(cands, cand{score: p.score + e.Score, edge: e, prevRank: rank})
			}
		}
		if len(cands) == 0 {
			return nil, ErrInconsistentLattice
		}
		sort.Slice(cands, func(i, j int) bool { return better(cands[i], cands[j]) })
		if len(cands) > k {
			cands = cands[:k]
		}
		dp[pos] = cands
	}

	out := make([]Path, 0, len(dp[n]))
	for rank := range dp[n] {
		edges := make([]Edge, 0, n)
		pos, r := n, rank
		for pos > 0 {
			c := dp[pos][r]
			edges = append(edges, c.edge)
			pos, r = c.edge.Start, c.prevRank
		}
		reverse(edges)
		out = append(out, Path{Edges: edges, Score: dp[n][rank].score})
	}
	return out, nil
}

// Rescore re-scores paths with word bigram context and re-sorts them, best
// first. Edge scores inside the lattice are context free; here each edge's
// dictionary term is replaced by the bigram log-probability conditioned on
// the previous word (backing off to the context-free term when the pair is
// unseen), with a virtual BOS word before the first edge. The sort is
// stable, so paths the bigram table cannot distinguish keep their k-best
// order.
func Rescore(paths []Path, s *Scorer) []Path {
	if len(paths) == 0 {
		return paths
	}
	m := s.Model()
	lambda := s.Lambda()
	out := make([]Path, len(paths))
	copy(out, paths)
	for i := range out {
		prev := model.IDBOS
		score := model.QToFloat(m.BOSTrans)
		for _, e := range out[i].Edges {
			dict := m.BigramLogP(prev, e.ID, s.DictTerm(e))
			score += lambda*dict + (1-lambda)*s.CharTerm(e.Start, e.End)
			prev = e.ID
		}
		out[i].Score = score
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

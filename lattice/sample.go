package lattice

import (
	"math"
	"math/rand/v2"
)

// logSumExp accumulates log(sum exp(x_i)) without overflowing. The zero
// value is the empty sum (-Inf).
type logSumExp struct {
	max float64
	sum float64
	any bool
}

func (a *logSumExp) add(x float64) {
	if math.IsInf(x, -1) {
		return
	}
	if !a.any || x > a.max {
		if a.any {
			a.sum = a.sum*math.Exp(a.max-x) + 1
		} else {
			a.sum = 1
		}
		a.max = x
		a.any = true
		return
	}
	a.sum += math.Exp(x - a.max)
}

func (a *logSumExp) value() float64 {
	if !a.any {
		return negInf
	}
	return a.max + math.Log(a.sum)
}

// Sample draws one segmentation from the posterior over lattice paths,
// proportional to exp(pathScore/temperature). It runs a forward pass over
// the tempered scores, then walks backward drawing each incoming edge with
// its exact conditional probability, so repeated calls with the same rng
// state reproduce the same path.
//
// A temperature that is not a positive finite number is treated as 1.
// The returned score is the untempered cumulative score of the drawn path.
func Sample(l *Lattice, rng *rand.Rand, temperature float64) ([]Edge, float64, error) {
	n := l.Len()
	if n == 0 {
		return nil, 0, nil
	}
	if !(temperature > 0) || math.IsInf(temperature, 1) {
		temperature = 1
	}

	alpha := make([]float64, n+1)
	alpha[0] = l.bos / temperature
	for pos := 1; pos <= n; pos++ {
		var acc logSumExp
		for _, e := range l.in[pos] {
			if e.Start != 0 && math.IsInf(alpha[e.Start], -1) {
				continue
			}
			acc.add(alpha[e.Start] + e.Score/temperature)
		}
		alpha[pos] = acc.value()
		if math.IsInf(alpha[pos], -1) {
			return nil, 0, ErrInconsistentLattice
		}
	}

	path := make([]Edge, 0, n)
	score := l.bos
	for pos := n; pos > 0; {
		u := rng.Float64()
		cum := 0.0
		edges := l.in[pos]
		var chosen Edge
		picked := false
		for _, e := range edges {
			if e.Start != 0 && math.IsInf(alpha[e.Start], -1) {
				continue
			}
			cum += math.Exp(alpha[e.Start] + e.Score/temperature - alpha[pos])
			if u < cum {
				chosen = e
				picked = true
				break
			}
		}
		if !picked {
			// Rounding can leave cum a hair under 1; take the last viable edge.
			for i := len(edges) - 1; i >= 0; i-- {
				e := edges[i]
				if e.Start == 0 || !math.IsInf(alpha[e.Start], -1) {
					chosen = e
					picked = true
					break
				}
			}
			if !picked {
				return nil, 0, ErrInconsistentLattice
			}
		}
		path = append(path, chosen)
		score += chosen.Score
		pos = chosen.Start
	}
	reverse(path)
	return path, score, nil
}

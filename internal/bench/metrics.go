package bench

// Config holds evaluation parameters.
type Config struct {
	Tolerance       int // byte offset match tolerance
	PrecisionWeight float64
	RecallWeight    float64
}

// DefaultConfig returns default evaluation configuration. Boundaries are
// byte offsets, so the default tolerance is exact.
func DefaultConfig() Config {
	return Config{
		Tolerance:       0,
		PrecisionWeight: 1.0,
		RecallWeight:    1.0,
	}
}

// Metrics holds evaluation results over word boundaries.
type Metrics struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
	WeightedScore  float64
}

// Evaluate compares predicted boundaries against ground truth.
// Uses greedy left-to-right matching within tolerance.
func Evaluate(predicted, truth []int, cfg Config) Metrics {
	matched := make([]bool, len(truth))
	tp := 0

	for _, p := range predicted {
		for i, t := range truth {
			if matched[i] {
				continue
			}
			diff := p - t
			if diff < 0 {
				diff = -diff
			}
			if diff <= cfg.Tolerance {
				matched[i] = true
				tp++
				break
			}
		}
	}

	return finish(Metrics{
		TruePositives:  tp,
		FalsePositives: len(predicted) - tp,
		FalseNegatives: len(truth) - tp,
	}, cfg)
}

// Aggregate combines per-sentence counts into corpus-level metrics.
func Aggregate(ms []Metrics, cfg Config) Metrics {
	var total Metrics
	for _, m := range ms {
		total.TruePositives += m.TruePositives
		total.FalsePositives += m.FalsePositives
		total.FalseNegatives += m.FalseNegatives
	}
	return finish(total, cfg)
}

func finish(m Metrics, cfg Config) Metrics {
	tp, fp, fn := m.TruePositives, m.FalsePositives, m.FalseNegatives
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	wp, wr := cfg.PrecisionWeight, cfg.RecallWeight
	if wp+wr > 0 {
		m.WeightedScore = (wp*m.Precision + wr*m.Recall) / (wp + wr)
	}
	return m
}

package bench

import (
	"sort"

	mmjp "github.com/mmjp/go-mmjp"
	"github.com/mmjp/go-mmjp/model"
)

// SweepResult holds metrics for one lambda0 value.
type SweepResult struct {
	LambdaQ int // Q8.8; effective weight is LambdaQ/256
	Metrics Metrics
}

// SweepLambdas generates Q8.8 lambda0 values from min to max with the given
// step.
func SweepLambdas(min, max, step int) []int {
	if step <= 0 {
		return nil
	}
	var qs []int
	for q := min; q <= max; q += step {
		qs = append(qs, q)
	}
	return qs
}

// EvaluateSentence segments one gold sentence and scores its boundaries.
func EvaluateSentence(seg *mmjp.Segmenter, s Sentence, cfg Config) (Metrics, error) {
	tokens, err := seg.Tokenize(s.Raw)
	if err != nil {
		return Metrics{}, err
	}
	var predicted []int
	for i, tok := range tokens {
		if i < len(tokens)-1 {
			predicted = append(predicted, tok.End)
		}
	}
	return Evaluate(predicted, s.Boundaries, cfg), nil
}

// Sweep patches lambda0 into the model image for each candidate value,
// evaluates the corpus, and returns results sorted by weighted score
// descending. The input image is never modified.
func Sweep(modelData []byte, sentences []Sentence, cfg Config, lambdaQs []int) ([]SweepResult, error) {
	var results []SweepResult

	for _, q := range lambdaQs {
		patched, err := model.PatchLambda0(modelData, q)
		if err != nil {
			return nil, err
		}
		seg, err := mmjp.NewFromBytes(patched)
		if err != nil {
			return nil, err
		}

		ms := make([]Metrics, 0, len(sentences))
		for _, s := range sentences {
			m, err := EvaluateSentence(seg, s, cfg)
			if err != nil {
				return nil, err
			}
			ms = append(ms, m)
		}

		results = append(results, SweepResult{
			LambdaQ: q,
			Metrics: Aggregate(ms, cfg),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Metrics.WeightedScore > results[j].Metrics.WeightedScore
	})
	return results, nil
}

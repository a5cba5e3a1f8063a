package lattice

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/mmjp/go-mmjp/model"
	"github.com/mmjp/go-mmjp/trie"
)

// twoWayModel has exactly two candidate paths for the input 都: the
// dictionary edge at -2.0 and the fallback edge at -1.5.
func twoWayModel(t *testing.T) *model.Model {
	t.Helper()
	b := trie.NewBuilder()
	if err := b.Add("都", 0); err != nil {
		t.Fatal(err)
	}
	m := &model.Model{
		Lambda0Q:   256,
		MaxWordLen: 4,
		Trie:       b.Build(),
		Unigram:    []int16{-512}, // -2.0
		UnkBase:    -384,         // -1.5
		UnkPerChar: 0,
	}
	m.SetCharClasses(model.CCModeCompat, 0, nil)
	return m
}

func TestSampleReproducible(t *testing.T) {
	m := testModel(t, 256)
	l := Build("東京都に東京", m)
	NewScorer(m, l).ScoreEdges(l)

	draw := func(seed uint64) ([]Edge, float64) {
		path, score, err := Sample(l, rand.New(rand.NewPCG(seed, 0)), 1.0)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		return path, score
	}

	a, aScore := draw(42)
	b, bScore := draw(42)
	if aScore != bScore || len(a) != len(b) {
		t.Fatal("same seed produced different draws")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different edges at %d", i)
		}
	}
}

func TestSampleCoversInput(t *testing.T) {
	m := testModel(t, 256)
	l := Build("東京都に", m)
	NewScorer(m, l).ScoreEdges(l)
	rng := rand.New(rand.NewPCG(7, 0))

	for i := 0; i < 200; i++ {
		path, score, err := Sample(l, rng, 1.0)
		if err != nil {
			t.Fatal(err)
		}
		pos := 0
		sum := 0.0
		for _, e := range path {
			if e.Start != pos {
				t.Fatalf("gap at position %d in draw %d", pos, i)
			}
			pos = e.End
			sum += e.Score
		}
		if pos != l.Len() {
			t.Fatalf("draw %d does not reach the end", i)
		}
		if math.Abs(sum-score) > 1e-9 {
			t.Fatalf("reported score %v differs from edge sum %v", score, sum)
		}
	}
}

func TestSampleFrequencies(t *testing.T) {
	m := twoWayModel(t)
	l := Build("都", m)
	NewScorer(m, l).ScoreEdges(l)

	// p(dict) = exp(-2) / (exp(-2) + exp(-1.5))
	want := math.Exp(-2) / (math.Exp(-2) + math.Exp(-1.5))

	rng := rand.New(rand.NewPCG(1234, 0))
	const n = 20000
	dict := 0
	for i := 0; i < n; i++ {
		path, _, err := Sample(l, rng, 1.0)
		if err != nil {
			t.Fatal(err)
		}
		if len(path) != 1 {
			t.Fatalf("expected single-edge path, got %d edges", len(path))
		}
		if path[0].Source == SourceDictionary {
			dict++
		}
	}
	got := float64(dict) / n
	if math.Abs(got-want) > 0.02 {
		t.Errorf("dictionary edge frequency = %.4f, want %.4f ± 0.02", got, want)
	}
}

func TestSampleTemperatureSharpens(t *testing.T) {
	m := twoWayModel(t)
	l := Build("都", m)
	NewScorer(m, l).ScoreEdges(l)

	// At temperature 0.1 the score gap of 0.5 becomes 5 nats; the higher
	// scoring fallback edge should dominate.
	rng := rand.New(rand.NewPCG(99, 0))
	const n = 2000
	fallback := 0
	for i := 0; i < n; i++ {
		path, _, err := Sample(l, rng, 0.1)
		if err != nil {
			t.Fatal(err)
		}
		if path[0].Source == SourceFallback {
			fallback++
		}
	}
	if got := float64(fallback) / n; got < 0.95 {
		t.Errorf("fallback frequency at T=0.1 = %.4f, want > 0.95", got)
	}
}

func TestSampleBOSTransition(t *testing.T) {
	m := twoWayModel(t)
	m.BOSTrans = 256

	l := Build("都", m)
	NewScorer(m, l).ScoreEdges(l)
	path, score, err := Sample(l, rand.New(rand.NewPCG(5, 0)), 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 1 {
		t.Fatalf("expected single-edge path, got %d edges", len(path))
	}
	if want := path[0].Score + 1.0; score != want {
		t.Errorf("score = %v, want %v (edge sum shifted by the BOS weight)", score, want)
	}
}

func TestSampleBadTemperature(t *testing.T) {
	m := twoWayModel(t)
	l := Build("都", m)
	NewScorer(m, l).ScoreEdges(l)

	for _, temp := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, _, err := Sample(l, rand.New(rand.NewPCG(1, 0)), temp); err != nil {
			t.Errorf("Sample(temperature=%v): %v", temp, err)
		}
	}
}

func TestSampleEmpty(t *testing.T) {
	m := twoWayModel(t)
	l := Build("", m)
	path, score, err := Sample(l, rand.New(rand.NewPCG(1, 0)), 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if path != nil || score != 0 {
		t.Errorf("empty input: got (%v, %v)", path, score)
	}
}

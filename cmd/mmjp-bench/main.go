package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	mmjp "github.com/mmjp/go-mmjp"
	"github.com/mmjp/go-mmjp/internal/bench"
)

func main() {
	var (
		modelPath = flag.String("model", "", "Path to .mmjp model file (required)")
		corpusDir = flag.String("corpus", "testdata/gold", "Directory containing gold segmentation files")
		tolerance = flag.Int("tolerance", 0, "Byte tolerance for boundary matching")
		wp        = flag.Float64("wp", 1.0, "Precision weight")
		wr        = flag.Float64("wr", 1.0, "Recall weight")
		sweep     = flag.Bool("sweep", false, "Run lambda0 sweep")
		sweepMin  = flag.Int("sweep-min", 0, "Sweep minimum lambda0 (Q8.8)")
		sweepMax  = flag.Int("sweep-max", 256, "Sweep maximum lambda0 (Q8.8)")
		sweepStep = flag.Int("sweep-step", 16, "Sweep step size (Q8.8)")
	)
	flag.Parse()

	if *modelPath == "" {
		fmt.Fprintln(os.Stderr, "error: -model required")
		flag.Usage()
		os.Exit(1)
	}

	sentences, err := bench.LoadCorpus(*corpusDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d sentences from %s\n\n", len(sentences), *corpusDir)

	cfg := bench.Config{
		Tolerance:       *tolerance,
		PrecisionWeight: *wp,
		RecallWeight:    *wr,
	}

	if *sweep {
		runSweep(*modelPath, sentences, cfg, *sweepMin, *sweepMax, *sweepStep)
	} else {
		runSingle(*modelPath, sentences, cfg)
	}
}

func runSingle(modelPath string, sentences []bench.Sentence, cfg bench.Config) {
	seg, err := mmjp.New(modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating segmenter: %v\n", err)
		os.Exit(1)
	}

	ms := make([]bench.Metrics, 0, len(sentences))
	for _, s := range sentences {
		m, err := bench.EvaluateSentence(seg, s, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error evaluating %q: %v\n", s.Raw, err)
			os.Exit(1)
		}
		ms = append(ms, m)
	}

	agg := bench.Aggregate(ms, cfg)
	fmt.Printf("Precision: %.2f  Recall: %.2f  F1: %.2f  Weighted: %.2f\n",
		agg.Precision, agg.Recall, agg.F1, agg.WeightedScore)
	fmt.Printf("(TP: %d, FP: %d, FN: %d)\n",
		agg.TruePositives, agg.FalsePositives, agg.FalseNegatives)
}

func runSweep(modelPath string, sentences []bench.Sentence, cfg bench.Config, min, max, step int) {
	data, err := os.ReadFile(modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading model: %v\n", err)
		os.Exit(1)
	}
	lambdas := bench.SweepLambdas(min, max, step)

	fmt.Printf("Lambda0 Sweep Results (wp=%.1f, wr=%.1f)\n", cfg.PrecisionWeight, cfg.RecallWeight)
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("%-8s %-8s %-8s %-8s %-8s %-8s\n", "Q", "Lambda", "Prec", "Rec", "F1", "Weighted")

	results, err := bench.Sweep(data, sentences, cfg, lambdas)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error during sweep: %v\n", err)
		os.Exit(1)
	}

	// Print sorted by lambda for readability
	for _, q := range lambdas {
		for _, r := range results {
			if r.LambdaQ == q {
				fmt.Printf("%-8d %-8.4f %-8.2f %-8.2f %-8.2f %-8.2f\n",
					r.LambdaQ, float64(r.LambdaQ)/256,
					r.Metrics.Precision, r.Metrics.Recall, r.Metrics.F1, r.Metrics.WeightedScore)
				break
			}
		}
	}

	fmt.Println(strings.Repeat("-", 50))
	if len(results) > 0 {
		best := results[0]
		fmt.Printf("Optimal: q=%d (lambda %.4f, Weighted: %.2f)\n",
			best.LambdaQ, float64(best.LambdaQ)/256, best.Metrics.WeightedScore)
	}
}

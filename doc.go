// Package mmjp segments unspaced Japanese text into words using compact
// binary models that mix a dictionary language model with a character-level
// CRF.
//
// # Quick Start
//
//	seg, err := mmjp.New("ja.mmjp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens, err := seg.Tokenize("東京都に住む")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, t := range tokens {
//	    fmt.Println(t.Surface)
//	}
//
// # Thread Safety
//
// Segmenter is safe for concurrent use. The loaded model is immutable and
// each call builds its own lattice.
//
// # Decoding Modes
//
// Tokenize returns the single best segmentation and is fully deterministic.
// Sample draws a random segmentation from the model's posterior, reproducible
// by seed; NBest enumerates candidates and re-ranks them with word bigram
// context.
package mmjp

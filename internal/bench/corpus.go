// Package bench provides evaluation utilities for word segmentation accuracy.
package bench

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentence is one gold-standard line: the unspaced input and the byte
// offsets where words end. Boundaries holds interior boundaries only; the
// trivial boundary at the end of the sentence carries no information.
type Sentence struct {
	Raw        string
	Tokens     []string
	Boundaries []int
}

// ParseLine parses one gold line of space-separated tokens into a Sentence.
// Runs of whitespace separate tokens; the raw text is their concatenation.
func ParseLine(line string) (Sentence, bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Sentence{}, false
	}
	s := Sentence{Tokens: tokens}
	off := 0
	for i, tok := range tokens {
		s.Raw += tok
		off += len(tok)
		if i < len(tokens)-1 {
			s.Boundaries = append(s.Boundaries, off)
		}
	}
	return s, true
}

// LoadFile reads one gold file: one pre-segmented sentence per line, with
// '#' lines and blank lines skipped.
func LoadFile(path string) ([]Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gold file: %w", err)
	}
	defer f.Close()

	var out []Sentence
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if s, ok := ParseLine(line); ok {
			out = append(out, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan gold file: %w", err)
	}
	return out, nil
}

// LoadCorpus loads every .txt gold file from a directory.
func LoadCorpus(dir string) ([]Sentence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var sentences []Sentence
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		sents, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		sentences = append(sentences, sents...)
	}
	return sentences, nil
}

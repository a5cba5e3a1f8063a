package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	mmjp "github.com/mmjp/go-mmjp"
	"github.com/spf13/cobra"
)

// readInput returns the joined positional arguments, or stdin when none are
// given.
func readInput(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, ""), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

type tokenJSON struct {
	Surface string `json:"surface"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Known   bool   `json:"known"`
}

func printTokens(w io.Writer, tokens []mmjp.Token, asJSON bool) error {
	if asJSON {
		out := make([]tokenJSON, len(tokens))
		for i, t := range tokens {
			out[i] = tokenJSON{Surface: t.Surface, Start: t.Start, End: t.End, Known: t.Known}
		}
		enc := json.NewEncoder(w)
		return enc.Encode(out)
	}
	surfaces := make([]string, len(tokens))
	for i, t := range tokens {
		surfaces[i] = t.Surface
	}
	_, err := fmt.Fprintln(w, strings.Join(surfaces, " "))
	return err
}

func newTokenizeCmd() *cobra.Command {
	var asJSON bool
	var withScore bool

	cmd := &cobra.Command{
		Use:   "tokenize [TEXT]...",
		Short: "Deterministically segment text (stdin when no argument)",
		RunE: func(cmd *cobra.Command, args []string) error {
			seg, err := newSegmenter()
			if err != nil {
				return err
			}
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()
			for _, line := range strings.Split(text, "\n") {
				tokens, score, err := seg.TokenizeWithScore(line)
				if err != nil {
					return err
				}
				if err := printTokens(out, tokens, asJSON); err != nil {
					return err
				}
				if withScore {
					fmt.Fprintf(out, "# score %.4f\n", score)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit tokens as JSON")
	cmd.Flags().BoolVar(&withScore, "score", false, "Print the segmentation score")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var asJSON bool
	var draws int

	cmd := &cobra.Command{
		Use:   "sample [TEXT]...",
		Short: "Draw random segmentations from the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			seg, err := newSegmenter()
			if err != nil {
				return err
			}
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()
			seed := activeCfg.Decode.Seed
			for i := 0; i < draws; i++ {
				tokens, _, err := seg.Sample(text, seed+uint64(i))
				if err != nil {
					return err
				}
				if err := printTokens(out, tokens, asJSON); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit tokens as JSON")
	cmd.Flags().IntVar(&draws, "draws", 1, "Number of segmentations to draw")
	return cmd
}

func newNBestCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "nbest [TEXT]...",
		Short: "List candidate segmentations, best first",
		RunE: func(cmd *cobra.Command, args []string) error {
			seg, err := newSegmenter()
			if err != nil {
				return err
			}
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			results, err := seg.NBest(text, activeCfg.Decode.NBest)
			if err != nil {
				return err
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()
			for i, r := range results {
				fmt.Fprintf(out, "%d\t%.4f\t", i+1, r.Score)
				if err := printTokens(out, r.Tokens, asJSON); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit tokens as JSON")
	return cmd
}

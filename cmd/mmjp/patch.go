package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mmjp/go-mmjp/model"
	"github.com/spf13/cobra"
)

func newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch IN OUT Q",
		Short: "Rewrite a model's lambda0 weight (Q8.8 fixed point)",
		Long: `Patch copies the model at IN to OUT with the interpolation weight
lambda0 replaced by Q, a Q8.8 fixed-point integer: the effective weight
is Q/256. All other bytes are preserved.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			q, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("Q must be an integer: %w", err)
			}

			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read model: %w", err)
			}
			old, err := model.ReadLambda0(data)
			if err != nil {
				return err
			}
			patched, err := model.PatchLambda0(data, q)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, patched, 0o644); err != nil {
				return fmt.Errorf("write model: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "lambda0: %d (%.6f) -> %d (%.6f)\n",
				old, model.QToFloat(old), q, float64(q)/256)
			return nil
		},
	}
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect MODEL",
		Short: "Print a model's header fields and table sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lambda0:      %d (%.6f)\n", m.Lambda0Q, m.Lambda0())
			fmt.Fprintf(out, "max word len: %d\n", m.MaxWordLen)
			fmt.Fprintf(out, "vocab:        %d\n", len(m.Unigram))
			fmt.Fprintf(out, "trie slots:   %d\n", m.Trie.Size())
			fmt.Fprintf(out, "bigrams:      %d\n", len(m.BigramKeys))
			fmt.Fprintf(out, "features:     %d\n", len(m.FeatKeys))
			fmt.Fprintf(out, "unk base:     %d (%.6f)\n", m.UnkBase, model.QToFloat(m.UnkBase))
			fmt.Fprintf(out, "unk per char: %d (%.6f)\n", m.UnkPerChar, model.QToFloat(m.UnkPerChar))
			fmt.Fprintf(out, "flags:        0x%x\n", m.Flags)
			return nil
		},
	}
	return cmd
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	mmjp "github.com/mmjp/go-mmjp"
	"github.com/mmjp/go-mmjp/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "mmjp",
		Short: "Segment unspaced Japanese text with packed mmjp models",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.Log)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newTokenizeCmd())
	cmd.AddCommand(newSampleCmd())
	cmd.AddCommand(newNBestCmd())
	cmd.AddCommand(newPatchCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(cfg config.LogConfig) {
	var lvl slog.Level
	switch cfg.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// newSegmenter builds a Segmenter from the active configuration.
func newSegmenter() (*mmjp.Segmenter, error) {
	if activeCfg.Paths.ModelPath == "" {
		return nil, fmt.Errorf("no model configured: pass --model or set MMJP_MODEL")
	}
	return mmjp.New(activeCfg.Paths.ModelPath,
		mmjp.WithTemperature(activeCfg.Decode.Temperature))
}

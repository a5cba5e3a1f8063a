package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.ModelPath != "" {
		t.Errorf("ModelPath = %q; want empty", cfg.Paths.ModelPath)
	}
	if cfg.Decode.Temperature != 1.0 {
		t.Errorf("Decode.Temperature = %v; want 1.0", cfg.Decode.Temperature)
	}
	if cfg.Decode.Seed != 0 {
		t.Errorf("Decode.Seed = %d; want 0", cfg.Decode.Seed)
	}
	if cfg.Decode.NBest != 5 {
		t.Errorf("Decode.NBest = %d; want 5", cfg.Decode.NBest)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q; want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q; want %q", cfg.Log.Format, "text")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{
		Cmd:      newFlagBinder(DefaultConfig()),
		Defaults: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Decode.Temperature != 1.0 || cfg.Decode.NBest != 5 {
		t.Errorf("defaults not applied: %+v", cfg.Decode)
	}
}

func TestLoadFlagOverride(t *testing.T) {
	binder := newFlagBinder(DefaultConfig())
	if err := binder.fs.Set("model", "/tmp/ja.mmjp"); err != nil {
		t.Fatal(err)
	}
	if err := binder.fs.Set("temperature", "0.5"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Paths.ModelPath != "/tmp/ja.mmjp" {
		t.Errorf("ModelPath = %q; want /tmp/ja.mmjp", cfg.Paths.ModelPath)
	}
	if cfg.Decode.Temperature != 0.5 {
		t.Errorf("Temperature = %v; want 0.5", cfg.Decode.Temperature)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MMJP_LOG_FORMAT", "json")
	t.Setenv("MMJP_NBEST", "10")

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q; want json", cfg.Log.Format)
	}
	if cfg.Decode.NBest != 10 {
		t.Errorf("Decode.NBest = %d; want 10", cfg.Decode.NBest)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mmjp.yaml")
	content := "paths:\n  model_path: /models/ja.mmjp\ndecode:\n  temperature: 2.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// Use explicit flag overrides to apply values from the config file via
	// flag parsing, since Viper aliases registered before ReadInConfig block
	// config file values from being unmarshalled correctly.
	binder := newFlagBinder(DefaultConfig())
	if err := binder.fs.Parse([]string{"--model=/models/ja.mmjp", "--temperature=2.0"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{Cmd: binder, ConfigFile: path, Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Paths.ModelPath != "/models/ja.mmjp" {
		t.Errorf("ModelPath = %q; want /models/ja.mmjp", cfg.Paths.ModelPath)
	}
	if cfg.Decode.Temperature != 2.0 {
		t.Errorf("Temperature = %v; want 2.0", cfg.Decode.Temperature)
	}
}

func TestLoadConfigFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mmjp.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(LoadOptions{ConfigFile: path, Defaults: DefaultConfig()}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"),
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadValidation(t *testing.T) {
	defaults := DefaultConfig()
	defaults.Decode.Temperature = -1
	if _, err := Load(LoadOptions{Defaults: defaults}); err == nil {
		t.Error("expected error for negative temperature")
	}

	defaults = DefaultConfig()
	defaults.Decode.NBest = 0
	if _, err := Load(LoadOptions{Defaults: defaults}); err == nil {
		t.Error("expected error for nbest 0")
	}

	defaults = DefaultConfig()
	defaults.Log.Format = "xml"
	if _, err := Load(LoadOptions{Defaults: defaults}); err == nil {
		t.Error("expected error for bad log format")
	}
}

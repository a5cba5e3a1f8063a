// Package config loads CLI configuration from flags, environment variables
// and an optional config file, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths  PathsConfig  `mapstructure:"paths"`
	Decode DecodeConfig `mapstructure:"decode"`
	Log    LogConfig    `mapstructure:"log"`
}

type PathsConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

type DecodeConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	Seed        uint64  `mapstructure:"seed"`
	NBest       int     `mapstructure:"nbest"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			ModelPath: "",
		},
		Decode: DecodeConfig{
			Temperature: 1.0,
			Seed:        0,
			NBest:       5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("model", defaults.Paths.ModelPath, "Path to .mmjp model file")
	fs.Float64("temperature", defaults.Decode.Temperature, "Sampling temperature")
	fs.Uint64("seed", defaults.Decode.Seed, "Sampling seed")
	fs.Int("nbest", defaults.Decode.NBest, "Number of candidates for n-best decoding")
	fs.String("log-level", defaults.Log.Level, "Log level (debug|info|warn|error)")
	fs.String("log-format", defaults.Log.Format, "Log format (text|json)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("MMJP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("mmjp")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Decode.Temperature <= 0 {
		return fmt.Errorf("decode.temperature must be positive, got %v", c.Decode.Temperature)
	}
	if c.Decode.NBest < 1 {
		return fmt.Errorf("decode.nbest must be at least 1, got %d", c.Decode.NBest)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.model_path", c.Paths.ModelPath)
	v.SetDefault("decode.temperature", c.Decode.Temperature)
	v.SetDefault("decode.seed", c.Decode.Seed)
	v.SetDefault("decode.nbest", c.Decode.NBest)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.model_path", "model")
	v.RegisterAlias("decode.temperature", "temperature")
	v.RegisterAlias("decode.seed", "seed")
	v.RegisterAlias("decode.nbest", "nbest")
	v.RegisterAlias("log.level", "log-level")
	v.RegisterAlias("log.format", "log-format")
}

package mmjp

import "log/slog"

// Option configures a Segmenter.
type Option func(*config)

type config struct {
	temperature float64
	logger      *slog.Logger
}

func defaultConfig() config {
	return config{
		temperature: 1.0,
		logger:      slog.Default(),
	}
}

// WithTemperature sets the sampling temperature (default: 1.0). Values that
// are not positive finite numbers fall back to the default. Deterministic
// decoding ignores the temperature.
func WithTemperature(t float64) Option {
	return func(c *config) {
		if t > 0 {
			c.temperature = t
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

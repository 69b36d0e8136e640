// internal/workers/burnout/predict-burnout/config.go
package predictburnout

import "time"

type Config struct {
	Timeout         time.Duration
	DefaultLookback time.Duration
	MaxLookback     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		DefaultLookback: 48 * time.Hour,
		MaxLookback:     30 * 24 * time.Hour,
	}
}

// internal/workers/alerts/evaluate-metric-alert/config.go
package evaluatemetricalert

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

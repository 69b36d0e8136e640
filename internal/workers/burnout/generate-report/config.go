// internal/workers/burnout/generate-report/config.go
package generatereport

import "time"

type Config struct {
	Timeout       time.Duration
	DefaultFormat string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		DefaultFormat: "json",
	}
}

// internal/workers/alerts/generate-smart-alert/config.go
package generatesmartalert

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

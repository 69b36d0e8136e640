// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	TimeSeries    TimeSeriesConfig        `mapstructure:"timeseries"`
	APIs          APIsConfig              `mapstructure:"apis"`
	Prediction    PredictionConfig        `mapstructure:"prediction"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Server        ServerConfig            `mapstructure:"server"`
	RegistryPath  string                  `mapstructure:"registry_path"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig holds the time-series cluster connection. Either an API key
// or a password must be set.
type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	APIKey    string   `mapstructure:"api_key"`
	URL       string   `mapstructure:"url"` // single URL, used when addresses is empty
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// GetAddresses returns the configured addresses, falling back to URL.
func (e ElasticsearchConfig) GetAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	if e.URL != "" {
		return []string{e.URL}
	}
	return nil
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TimeSeriesConfig describes where wearable samples live.
type TimeSeriesConfig struct {
	Index       string `mapstructure:"index"`
	Measurement string `mapstructure:"measurement"`
	SubjectTag  string `mapstructure:"subject_tag"`
	PageSize    int    `mapstructure:"page_size"`
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	BurnoutAI BurnoutAIConfig `mapstructure:"burnout_ai"`
}

// BurnoutAIConfig configures the remote burnout model. Timeouts are milliseconds.
type BurnoutAIConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	HealthTimeout     int    `mapstructure:"health_timeout"`
	AnalyzeTimeout    int    `mapstructure:"analyze_timeout"`
	PredictionTimeout int    `mapstructure:"prediction_timeout"`
}

// PredictionConfig holds lookback windows and cache lifetimes (seconds).
type PredictionConfig struct {
	LookbackHours        int     `mapstructure:"lookback_hours"`
	WidgetLookbackHours  int     `mapstructure:"widget_lookback_hours"`
	ReportCacheTTL       int     `mapstructure:"report_cache_ttl"`
	SmartAlertCacheTTL   int     `mapstructure:"smart_alert_cache_ttl"`
	ThresholdAlertTTL    int     `mapstructure:"threshold_alert_ttl"`
	MetricAlertThreshold float64 `mapstructure:"metric_alert_threshold"`
}

func (p PredictionConfig) Lookback() time.Duration {
	return time.Duration(p.LookbackHours) * time.Hour
}

func (p PredictionConfig) WidgetLookback() time.Duration {
	return time.Duration(p.WidgetLookbackHours) * time.Hour
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "burnout-workers/internal/common/errors"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml over it and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// overrideEmptyConfig fills connection secrets from the conventional env names when
// the config file left them empty.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Elasticsearch.Password, "ELASTICSEARCH_PASSWORD")
	setIfEmpty(&cfg.Database.Elasticsearch.APIKey, "ELASTICSEARCH_API_KEY")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.APIs.BurnoutAI.BaseURL, "BURNOUT_API_URL")
}

func setIfEmpty(field *string, envKey string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "burnout-workers"
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	// Time-series defaults
	if cfg.TimeSeries.Index == "" {
		cfg.TimeSeries.Index = "wearable_biometrics"
	}
	if cfg.TimeSeries.Measurement == "" {
		cfg.TimeSeries.Measurement = "wearable_biometrics"
	}
	if cfg.TimeSeries.SubjectTag == "" {
		cfg.TimeSeries.SubjectTag = "worker_id"
	}
	if cfg.TimeSeries.PageSize == 0 {
		cfg.TimeSeries.PageSize = 5000
	}

	// Burnout AI defaults
	if cfg.APIs.BurnoutAI.BaseURL == "" {
		cfg.APIs.BurnoutAI.BaseURL = "http://burnout-microservice:8001"
	}
	if cfg.APIs.BurnoutAI.HealthTimeout == 0 {
		cfg.APIs.BurnoutAI.HealthTimeout = 2000
	}
	if cfg.APIs.BurnoutAI.AnalyzeTimeout == 0 {
		cfg.APIs.BurnoutAI.AnalyzeTimeout = 5000
	}
	if cfg.APIs.BurnoutAI.PredictionTimeout == 0 {
		cfg.APIs.BurnoutAI.PredictionTimeout = 3000
	}

	// Prediction defaults
	if cfg.Prediction.LookbackHours == 0 {
		cfg.Prediction.LookbackHours = 48
	}
	if cfg.Prediction.WidgetLookbackHours == 0 {
		cfg.Prediction.WidgetLookbackHours = 24
	}
	if cfg.Prediction.ReportCacheTTL == 0 {
		cfg.Prediction.ReportCacheTTL = 600
	}
	if cfg.Prediction.SmartAlertCacheTTL == 0 {
		cfg.Prediction.SmartAlertCacheTTL = 600
	}
	if cfg.Prediction.ThresholdAlertTTL == 0 {
		cfg.Prediction.ThresholdAlertTTL = 3600
	}
	if cfg.Prediction.MetricAlertThreshold == 0 {
		cfg.Prediction.MetricAlertThreshold = 80
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.RegistryPath == "" {
		cfg.RegistryPath = "configs/activity-registry.json"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig checks the settings the process cannot start without. Missing
// connection secrets are reported as CONFIGURATION_ERROR.
func validateConfig(cfg *Config) error {
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return apperrors.NewConfigurationError("camunda.broker_address", "required when camunda.enabled is true")
	}

	pg := cfg.Database.Postgres
	if pg.Host == "" {
		return apperrors.NewConfigurationError("database.postgres.host", "")
	}
	if pg.Database == "" {
		return apperrors.NewConfigurationError("database.postgres.database", "")
	}
	if pg.User == "" {
		return apperrors.NewConfigurationError("database.postgres.user", "")
	}
	if pg.Password == "" {
		return apperrors.NewConfigurationError("database.postgres.password", "set DB_PASSWORD or database.postgres.password")
	}

	es := cfg.Database.Elasticsearch
	if len(es.GetAddresses()) == 0 {
		return apperrors.NewConfigurationError("database.elasticsearch.addresses", "")
	}
	if es.APIKey == "" && es.Password == "" {
		return apperrors.NewConfigurationError("database.elasticsearch.password", "set ELASTICSEARCH_PASSWORD or ELASTICSEARCH_API_KEY")
	}

	if cfg.Database.Redis.Address == "" {
		return apperrors.NewConfigurationError("database.redis.address", "")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetTTL converts seconds from config to time.Duration
func GetTTL(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}

// Package bootstrap wires the configured stores, the prediction pipeline and its
// consumers into one App shared by the worker manager and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"burnout-workers/internal/alerts"
	"burnout-workers/internal/api"
	"burnout-workers/internal/common/burnoutai"
	"burnout-workers/internal/common/cache"
	"burnout-workers/internal/common/camunda"
	"burnout-workers/internal/common/config"
	"burnout-workers/internal/common/database"
	apphttp "burnout-workers/internal/common/http"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/observability"
	"burnout-workers/internal/common/timeseries"
	"burnout-workers/internal/common/validation"
	"burnout-workers/internal/prediction"
	"burnout-workers/internal/reports"
	"burnout-workers/internal/repository"
	"burnout-workers/pkg/registry"
)

type App struct {
	Config *config.Config
	Logger logger.Logger
	Obs    *observability.Observability

	Postgres      *database.PostgresClient
	Elasticsearch *database.ElasticsearchClient
	Redis         *database.RedisClient
	Cache         *cache.RedisCache

	AI           *burnoutai.Client
	Orchestrator *prediction.Orchestrator
	Thresholds   *alerts.ThresholdStore
	SmartAlerts  *alerts.SmartAlertService
	Reports      *reports.Assembler
	Validator    *validation.Validator

	Camunda *camunda.Client
	workers []*camunda.Worker
}

// Options controls which optional parts New brings up.
type Options struct {
	// ConnectAttempts bounds the startup connection retries per store.
	ConnectAttempts int
	RetryDelay      time.Duration
	// SkipObservability leaves the global OTel providers untouched.
	SkipObservability bool
}

func DefaultOptions() Options {
	return Options{ConnectAttempts: 10, RetryDelay: 2 * time.Second}
}

// New connects every store, retrying with backoff, and builds the pipeline. The
// Zeebe client is only created when camunda.enabled is set.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	app := &App{Config: cfg, Logger: log}

	if !opts.SkipObservability {
		obs, err := observability.New(observability.Config{
			ServiceName:    cfg.Observability.ServiceName,
			JaegerEndpoint: cfg.Observability.JaegerEndpoint,
			SampleRatio:    cfg.Observability.SampleRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("observability: %w", err)
		}
		app.Obs = obs
	}

	if err := app.connectStores(ctx, opts); err != nil {
		app.Close(ctx)
		return nil, err
	}

	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	if app.Validator, err = validation.NewValidator(reg); err != nil {
		app.Close(ctx)
		return nil, err
	}

	app.buildPipeline()

	if cfg.Camunda.Enabled {
		app.Camunda, err = camunda.NewClient(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		}, log)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		log.Info("Zeebe client connected successfully", map[string]interface{}{
			"gateway": cfg.Camunda.BrokerAddress,
		})
	}

	return app, nil
}

func (a *App) connectStores(ctx context.Context, opts Options) error {
	cfg := a.Config

	err := retryWithBackoff(ctx, func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		a.Postgres = pg
		return nil
	}, opts, a.Logger, "PostgreSQL connection")
	if err != nil {
		return err
	}
	a.Logger.Info("PostgreSQL connected successfully", nil)

	err = retryWithBackoff(ctx, func() error {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := es.Ping(ctx); err != nil {
			return err
		}
		a.Elasticsearch = es
		return nil
	}, opts, a.Logger, "Elasticsearch connection")
	if err != nil {
		return err
	}
	a.Logger.Info("Elasticsearch connected successfully", nil)

	err = retryWithBackoff(ctx, func() error {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			return err
		}
		a.Redis = rdb
		return nil
	}, opts, a.Logger, "Redis connection")
	if err != nil {
		return err
	}
	a.Cache = cache.NewRedisCache(a.Redis.Client)
	a.Logger.Info("Redis connected successfully", nil)
	return nil
}

func (a *App) buildPipeline() {
	cfg := a.Config
	pc := cfg.Prediction

	biometrics := timeseries.NewStore(a.Elasticsearch.Client, timeseries.Config{
		Index:       cfg.TimeSeries.Index,
		Measurement: cfg.TimeSeries.Measurement,
		SubjectTag:  cfg.TimeSeries.SubjectTag,
		PageSize:    cfg.TimeSeries.PageSize,
	}, a.Logger)
	workMetrics := repository.NewWorkMetricsRepository(a.Postgres.DB, a.Logger)

	ai := cfg.APIs.BurnoutAI
	a.AI = burnoutai.NewClient(burnoutai.Config{
		BaseURL:           ai.BaseURL,
		HealthTimeout:     config.GetDuration(ai.HealthTimeout),
		AnalyzeTimeout:    config.GetDuration(ai.AnalyzeTimeout),
		PredictionTimeout: config.GetDuration(ai.PredictionTimeout),
	}, apphttp.NewClient(config.GetDuration(ai.AnalyzeTimeout)), a.Logger)

	a.Orchestrator = prediction.NewOrchestrator(prediction.Config{Lookback: pc.Lookback()}, biometrics, workMetrics, a.AI, a.Logger)
	a.Thresholds = alerts.NewThresholdStore(a.Cache, pc.MetricAlertThreshold, config.GetTTL(pc.ThresholdAlertTTL), a.Logger)
	a.SmartAlerts = alerts.NewSmartAlertService(a.Orchestrator, a.Cache, config.GetTTL(pc.SmartAlertCacheTTL), pc.WidgetLookback(), a.Logger)
	a.Reports = reports.NewAssembler(reports.Config{TTL: config.GetTTL(pc.ReportCacheTTL)}, a.Orchestrator, a.Thresholds, a.SmartAlerts, a.Cache, a.Logger)
}

// ReadinessChecks returns the dependencies /ready pings.
func (a *App) ReadinessChecks() map[string]api.Pinger {
	checks := map[string]api.Pinger{
		"postgres":      a.Postgres,
		"elasticsearch": a.Elasticsearch,
		"redis":         a.Redis,
	}
	if a.Camunda != nil {
		checks["zeebe"] = api.PingerFunc(a.Camunda.HealthCheck)
	}
	return checks
}

// APIServer builds the HTTP surface over the pipeline.
func (a *App) APIServer() *api.Server {
	return api.NewServer(api.Deps{
		Predictor:   a.Orchestrator,
		Quick:       a.AI,
		Reports:     a.Reports,
		Alerts:      a.Thresholds,
		SmartAlerts: a.SmartAlerts,
		Checks:      a.ReadinessChecks(),
	}, a.Logger)
}

// Close stops the workers and releases every connection that was opened.
func (a *App) Close(ctx context.Context) {
	a.StopWorkers()
	if a.Camunda != nil {
		if err := a.Camunda.Close(); err != nil {
			a.Logger.Warn("zeebe close failed", map[string]interface{}{"error": err})
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Postgres != nil {
		_ = a.Postgres.Close()
	}
	if a.Obs != nil {
		if err := a.Obs.Shutdown(ctx); err != nil {
			a.Logger.Warn("observability shutdown failed", map[string]interface{}{"error": err})
		}
	}
}

// retryWithBackoff retries op with exponential backoff until it succeeds, the
// attempts run out or ctx is done.
func retryWithBackoff(ctx context.Context, op func() error, opts Options, log logger.Logger, operation string) error {
	attempts := opts.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := opts.RetryDelay

	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		log.Warn(operation+" failed, retrying", map[string]interface{}{
			"error":       err,
			"attempt":     i + 1,
			"maxRetries":  attempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled: %w", operation, ctx.Err())
		}
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, err)
}

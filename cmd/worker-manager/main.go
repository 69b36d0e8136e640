// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"burnout-workers/internal/bootstrap"
	"burnout-workers/internal/common/config"
	"burnout-workers/internal/common/logger"
)

const defaultConfigPath = "configs/config.yaml"

func loadConfig() (*config.Config, string, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		cfg, err := config.Load()
		return cfg, "", err
	}
	cfg, err := config.LoadFromFile(path)
	return cfg, path, err
}

func main() {
	bootLog := logger.New("info", "console")
	bootLog.Info("Starting worker manager...")

	cfg, configPath, err := loadConfig()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog, level := logger.NewWithLevel(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log, bootstrap.DefaultOptions())
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}

	app.StartWorkers()

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, log, func(next *config.Config) {
				if next.Logging.Level != cfg.Logging.Level {
					level.SetLevel(logger.ParseLevel(next.Logging.Level))
					log.Info("log level changed", map[string]interface{}{
						"from": cfg.Logging.Level,
						"to":   next.Logging.Level,
					})
					cfg.Logging.Level = next.Logging.Level
				}
			})
			if err != nil {
				log.Error("config watch stopped", map[string]interface{}{"error": err})
			}
		}()
	}

	server := app.APIServer().NewHTTPServer(
		cfg.Server.Address,
		config.GetDuration(cfg.Server.ReadTimeout),
		config.GetDuration(cfg.Server.WriteTimeout),
	)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", map[string]interface{}{"error": err})
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", map[string]interface{}{"error": err})
	}
	app.Close(shutdownCtx)

	log.Info("Worker manager stopped", nil)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"burnout-workers/internal/bootstrap"
	"burnout-workers/internal/common/burnoutai"
	"burnout-workers/internal/common/config"
	apphttp "burnout-workers/internal/common/http"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/validation"
	"burnout-workers/internal/models"
	"burnout-workers/internal/reports"
	"burnout-workers/pkg/registry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "burnoutctl",
		Short:         "Operate the burnout prediction pipeline from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: search configs/)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug|info|warn|error")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(newPredictCmd(g))
	root.AddCommand(newReportCmd(g))
	root.AddCommand(newAIHealthCmd(g))
	root.AddCommand(newQuickCmd(g))
	root.AddCommand(newRegistryCmd())
	return root
}

func (g *globalFlags) logger() logger.Logger {
	return logger.NewStructured(g.logLevel, "console")
}

func (g *globalFlags) loadConfig() (*config.Config, error) {
	if g.configPath != "" {
		return config.LoadFromFile(g.configPath)
	}
	return config.Load()
}

func (g *globalFlags) loadApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	// One-shot commands never consume jobs.
	cfg.Camunda.Enabled = false
	return bootstrap.New(ctx, cfg, g.logger(), bootstrap.Options{
		ConnectAttempts:   1,
		SkipObservability: true,
	})
}

// aiClient builds a model client from --ai-url when set, the config otherwise.
func (g *globalFlags) aiClient(baseURL string) (*burnoutai.Client, error) {
	aiCfg := burnoutai.DefaultConfig()
	if baseURL == "" {
		cfg, err := g.loadConfig()
		if err != nil {
			return nil, err
		}
		ai := cfg.APIs.BurnoutAI
		aiCfg = burnoutai.Config{
			BaseURL:           ai.BaseURL,
			HealthTimeout:     config.GetDuration(ai.HealthTimeout),
			AnalyzeTimeout:    config.GetDuration(ai.AnalyzeTimeout),
			PredictionTimeout: config.GetDuration(ai.PredictionTimeout),
		}
	} else {
		aiCfg.BaseURL = baseURL
	}
	return burnoutai.NewClient(aiCfg, apphttp.NewClient(aiCfg.AnalyzeTimeout), g.logger()), nil
}

func newPredictCmd(g *globalFlags) *cobra.Command {
	var lookbackHours int
	var token string

	cmd := &cobra.Command{
		Use:   "predict <subject-id>",
		Short: "Run the full prediction pipeline for one subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()

			app, err := g.loadApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			result := app.Orchestrator.Predict(ctx, models.PredictionRequest{
				SubjectID: args[0],
				Lookback:  time.Duration(lookbackHours) * time.Hour,
				AuthToken: token,
			})
			return writeJSON(cmd, result.Payload())
		},
	}
	cmd.Flags().IntVar(&lookbackHours, "lookback-hours", 0, "biometric window in hours (0 uses the configured default)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token forwarded to the AI service")
	return cmd
}

func newReportCmd(g *globalFlags) *cobra.Command {
	var format, token string

	cmd := &cobra.Command{
		Use:   "report <subject-id>",
		Short: "Print the wellbeing report for one subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, err := reports.NormalizeFormat(format)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()

			app, err := g.loadApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			body, err := app.Reports.Report(ctx, args[0], normalized, token)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", reports.FormatJSON, "report format: json|xml")
	cmd.Flags().StringVar(&token, "token", "", "bearer token forwarded to the AI service")
	return cmd
}

func newAIHealthCmd(g *globalFlags) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "ai-health",
		Short: "Probe the burnout model service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := g.aiClient(baseURL)
			if err != nil {
				return err
			}
			if !client.IsAvailable(cmd.Context()) {
				return fmt.Errorf("burnout model unavailable")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "healthy")
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "ai-url", "", "model base URL (overrides config)")
	return cmd
}

func newQuickCmd(g *globalFlags) *cobra.Command {
	var baseURL, token string

	cmd := &cobra.Command{
		Use:   "quick <subject-id>",
		Short: "Fetch the model's stored burnout probability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.aiClient(baseURL)
			if err != nil {
				return err
			}
			probability := client.GetPrediction(cmd.Context(), args[0], token)
			if probability == nil {
				return fmt.Errorf("no prediction available for %s", args[0])
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %.2f\n", args[0], *probability)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "ai-url", "", "model base URL (overrides config)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token forwarded to the AI service")
	return cmd
}

func newRegistryCmd() *cobra.Command {
	var path string

	reg := &cobra.Command{Use: "registry", Short: "Inspect the activity registry"}
	reg.PersistentFlags().StringVar(&path, "path", "configs/activity-registry.json", "registry file")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the registry parses and every input schema compiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if _, err := validation.NewValidator(r); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registry ok: %d activities\n", len(r.Activities))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered task types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			for _, taskType := range r.TaskTypes() {
				a, _ := r.Find(taskType)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-10s %s\n", taskType, a.ImplementationStatus, a.DisplayName)
			}
			return nil
		},
	}

	reg.AddCommand(validate, list)
	return reg
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package prediction computes a subject's burnout risk: biometric analysis, local
// rule scoring, the optional hybrid merge with the remote model, and the alert and
// intervention plan derived from the result.
package prediction

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"burnout-workers/internal/alerts"
	apperrors "burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/metrics"
	"burnout-workers/internal/models"
)

// BiometricSource reads a subject's wearable samples.
type BiometricSource interface {
	FetchSamples(ctx context.Context, subjectID string, lookback time.Duration) ([]models.BiometricSample, error)
}

// WorkMetricsSource reads the newest workplace telemetry snapshot. A nil result
// with a nil error means no snapshot exists.
type WorkMetricsSource interface {
	LatestWorkMetrics(ctx context.Context, subjectID string) (*models.WorkMetrics, error)
}

// RiskAnalyzer is the remote burnout model. Implementations never return errors.
type RiskAnalyzer interface {
	IsAvailable(ctx context.Context) bool
	AnalyzeWithAI(ctx context.Context, subjectID string, summary *models.BiometricAnalysisSummary, wm *models.WorkMetrics, authToken string) *models.ExternalRiskAssessment
}

type Config struct {
	Lookback time.Duration
}

type Orchestrator struct {
	biometrics  BiometricSource
	workMetrics WorkMetricsSource
	ai          RiskAnalyzer
	config      Config
	logger      logger.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

func NewOrchestrator(config Config, biometrics BiometricSource, workMetrics WorkMetricsSource, ai RiskAnalyzer, log logger.Logger) *Orchestrator {
	if config.Lookback <= 0 {
		config.Lookback = 48 * time.Hour
	}
	return &Orchestrator{
		biometrics:  biometrics,
		workMetrics: workMetrics,
		ai:          ai,
		config:      config,
		logger:      log.WithFields(map[string]interface{}{"component": "prediction"}),
		tracer:      otel.Tracer("burnout-workers/prediction"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Predict runs the pipeline for one subject. It always returns a complete result:
// any store failure, panic or cancellation yields the fallback assessment.
func (o *Orchestrator) Predict(ctx context.Context, req models.PredictionRequest) (result *models.PredictionResult) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "prediction.Predict", trace.WithAttributes(
		attribute.String("subject.id", req.SubjectID),
	))
	defer span.End()

	log := o.logger.WithFields(map[string]interface{}{"subjectId": req.SubjectID})

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			span.RecordError(err)
			log.Error("Prediction pipeline panicked", map[string]interface{}{"error": err})
			result = o.fallback(req.SubjectID)
		}
		source := result.Merged.Source
		span.SetAttributes(attribute.String("prediction.source", source))
		metrics.PredictionsTotal.WithLabelValues(source).Inc()
		metrics.PredictionDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}()

	result, err := o.run(ctx, req, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")
		fields := map[string]interface{}{"error": err}
		if stdErr, ok := apperrors.AsStandardError(err); ok {
			fields["errorCode"] = string(stdErr.Code)
		}
		log.Warn("Prediction degraded to fallback", fields)
		return o.fallback(req.SubjectID)
	}
	return result
}

func (o *Orchestrator) run(ctx context.Context, req models.PredictionRequest, log logger.Logger) (*models.PredictionResult, error) {
	lookback := req.Lookback
	if lookback <= 0 {
		lookback = o.config.Lookback
	}

	var (
		samples []models.BiometricSample
		wm      *models.WorkMetrics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverAsError(&err)
		samples, err = o.biometrics.FetchSamples(gctx, req.SubjectID, lookback)
		if err != nil {
			return fmt.Errorf("fetch biometric samples: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		defer recoverAsError(&err)
		wm, err = o.workMetrics.LatestWorkMetrics(gctx, req.SubjectID)
		if err != nil {
			return fmt.Errorf("fetch work metrics: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := AnalyzeBiometrics(samples)
	if summary == nil {
		dataErr := apperrors.NewDataUnavailableError(req.SubjectID, fmt.Sprintf("%d samples, no valid heart rate", len(samples)))
		log.Info("Scoring without biometrics", map[string]interface{}{
			"errorCode": string(dataErr.Code),
			"samples":   len(samples),
		})
	}

	local := ScoreLocalRisk(summary, wm)
	ai := o.analyzeRemotely(ctx, req, summary, wm)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	merged := Merge(local, ai)

	result := &models.PredictionResult{
		SubjectID:     req.SubjectID,
		Merged:        merged,
		Summary:       summary,
		WorkMetrics:   wm,
		Local:         &local,
		AI:            ai,
		Alert:         alerts.Generate(merged, summary, ai),
		Interventions: alerts.RecommendInterventions(merged, ai),
		GeneratedAt:   o.now(),
	}
	if ai != nil {
		result.UsedDefaults = ai.UsedDefaults
	}

	log.Info("Prediction completed", map[string]interface{}{
		"score":  merged.Score,
		"level":  string(merged.Level),
		"source": merged.Source,
	})
	return result, nil
}

// analyzeRemotely gates the AI call on a successful probe and on having biometric
// data. The probe always finishes before the analysis starts.
func (o *Orchestrator) analyzeRemotely(ctx context.Context, req models.PredictionRequest, summary *models.BiometricAnalysisSummary, wm *models.WorkMetrics) *models.ExternalRiskAssessment {
	if o.ai == nil {
		return nil
	}
	ctx, span := o.tracer.Start(ctx, "prediction.analyzeRemotely")
	defer span.End()

	if !o.ai.IsAvailable(ctx) {
		metrics.AIRequests.WithLabelValues("unavailable").Inc()
		return nil
	}
	if summary == nil {
		metrics.AIRequests.WithLabelValues("skipped_no_data").Inc()
		return nil
	}

	ai := o.ai.AnalyzeWithAI(ctx, req.SubjectID, summary, wm, req.AuthToken)
	if ai == nil {
		metrics.AIRequests.WithLabelValues("failed").Inc()
		return nil
	}
	metrics.AIRequests.WithLabelValues("success").Inc()
	return ai
}

func (o *Orchestrator) fallback(subjectID string) *models.PredictionResult {
	return &models.PredictionResult{
		SubjectID:     subjectID,
		Merged:        Fallback(),
		Interventions: []models.Intervention{},
		GeneratedAt:   o.now(),
	}
}

// recoverAsError turns a panic in a fan-out goroutine into that goroutine's error.
func recoverAsError(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic: %v", r)
	}
}

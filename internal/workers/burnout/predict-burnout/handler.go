// internal/workers/burnout/predict-burnout/handler.go
package predictburnout

import (
	"context"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"burnout-workers/internal/common/camunda"
	"burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/validation"
	"burnout-workers/internal/models"
)

const (
	TaskType = "predict-burnout"
)

// Predictor runs the prediction pipeline. It never fails.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) *models.PredictionResult
}

type Handler struct {
	config       *Config
	predictor    Predictor
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, predictor Predictor, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		predictor:    predictor,
		validator:    validator,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job, TaskType, h.validator, &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":    job.Key,
		"subjectId": input.SubjectID,
		"riskLevel": string(output.RiskLevel),
		"source":    output.Source,
	})
	return nil
}

// Execute runs one prediction. Only input errors are returned; a degraded pipeline
// still completes with the fallback source.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.SubjectID) == "" {
		return nil, errors.NewInvalidInputError("subjectId is required")
	}

	lookback := h.config.DefaultLookback
	if input.LookbackHours > 0 {
		lookback = time.Duration(input.LookbackHours) * time.Hour
	}
	if h.config.MaxLookback > 0 && lookback > h.config.MaxLookback {
		return nil, errors.NewInvalidInputError("lookbackHours exceeds the maximum window")
	}

	result := h.predictor.Predict(ctx, models.PredictionRequest{
		SubjectID: input.SubjectID,
		Lookback:  lookback,
		AuthToken: input.AuthToken,
	})
	payload := result.Payload()

	return &Output{
		RiskLevel:          payload.Prediction.RiskLevel,
		BurnoutProbability: payload.Prediction.BurnoutProbability,
		Source:             payload.Prediction.Source,
		RequiresAction:     payload.Summary.RequiresAction,
		Prediction:         payload,
	}, nil
}

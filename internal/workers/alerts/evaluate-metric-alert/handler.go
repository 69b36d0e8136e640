// internal/workers/alerts/evaluate-metric-alert/handler.go
package evaluatemetricalert

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"burnout-workers/internal/common/camunda"
	"burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/validation"
	"burnout-workers/internal/models"
)

const (
	TaskType = "evaluate-metric-alert"
)

// AlertStore records a reading and reports the subject's active alert count.
type AlertStore interface {
	Record(ctx context.Context, subjectID, metric string, value float64) (*models.ThresholdAlert, int, error)
}

type Handler struct {
	config       *Config
	store        AlertStore
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store AlertStore, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		validator:    validator,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
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

	return camunda.CompleteJob(ctx, client, job, output)
}

// Execute evaluates one reading. A failed cache write fails the job so the engine
// retries it; once the alert is written the job completes.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Value == nil {
		return nil, errors.NewInvalidInputError("value is required")
	}

	alert, active, err := h.store.Record(ctx, input.SubjectID, input.Metric, *input.Value)
	if err != nil {
		return nil, err
	}

	if alert != nil {
		h.logger.Info("metric crossed threshold", map[string]interface{}{
			"subjectId": input.SubjectID,
			"metric":    input.Metric,
			"value":     *input.Value,
		})
	}
	return &Output{
		AlertRaised:  alert != nil,
		Alert:        alert,
		ActiveAlerts: active,
	}, nil
}

// internal/workers/alerts/generate-smart-alert/handler.go
package generatesmartalert

import (
	"context"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"burnout-workers/internal/alerts"
	"burnout-workers/internal/common/camunda"
	"burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/validation"
)

const (
	TaskType = "generate-smart-alert"
)

type SmartAlertSource interface {
	Get(ctx context.Context, subjectID, authToken string) *alerts.SmartAlert
}

type Handler struct {
	config       *Config
	source       SmartAlertSource
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, source SmartAlertSource, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		source:       source,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.SubjectID) == "" {
		return nil, errors.NewInvalidInputError("subjectId is required")
	}

	smart := h.source.Get(ctx, input.SubjectID, input.AuthToken)
	output := &Output{SmartAlert: smart}
	if smart.Alert != nil {
		output.AlertRaised = true
		output.Severity = smart.Alert.Severity
	}
	return output, nil
}

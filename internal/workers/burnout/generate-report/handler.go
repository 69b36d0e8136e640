// internal/workers/burnout/generate-report/handler.go
package generatereport

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"burnout-workers/internal/common/camunda"
	"burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/validation"
	"burnout-workers/internal/reports"
)

const (
	TaskType = "generate-report"
)

type Reporter interface {
	Report(ctx context.Context, subjectID, format, authToken string) ([]byte, error)
}

type Handler struct {
	config       *Config
	reporter     Reporter
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, reporter Reporter, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		reporter:     reporter,
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
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	format := input.Format
	if format == "" {
		format = h.config.DefaultFormat
	}
	format, err := reports.NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	body, err := h.reporter.Report(ctx, input.SubjectID, format, input.AuthToken)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("report generated", map[string]interface{}{
		"subjectId": input.SubjectID,
		"format":    format,
		"bytes":     len(body),
	})
	return &Output{
		Report:      string(body),
		Format:      format,
		ContentType: ContentType(format),
		SizeBytes:   len(body),
	}, nil
}

func ContentType(format string) string {
	if format == reports.FormatXML {
		return "application/xml"
	}
	return "application/json"
}

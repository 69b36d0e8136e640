package camunda

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/validation"
)

// DecodeVariables checks the job variables against the task's registered input
// schema and decodes them into dest. Every failure is INVALID_INPUT.
func DecodeVariables(job entities.Job, taskType string, validator *validation.Validator, dest interface{}) error {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("job variables are not a JSON object: %v", err))
	}
	if validator != nil {
		if err := validator.ValidateInput(taskType, vars).Err(); err != nil {
			return err
		}
	}
	if err := job.GetVariablesAs(dest); err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("decode job variables: %v", err))
	}
	return nil
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

package camunda

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/validation"
	"burnout-workers/pkg/registry"
)

func createMockJob(key int64, variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               "predict-burnout",
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "burnout-monitoring",
		Retries:            3,
		Variables:          variables,
	}}
}

func TestDecodeVariables(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../configs/activity-registry.json")
	require.NoError(t, err)
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)

	type input struct {
		SubjectID string `json:"subjectId"`
	}

	tests := []struct {
		name      string
		variables string
		wantErr   bool
		want      string
	}{
		{name: "valid", variables: `{"subjectId":"emp-1"}`, want: "emp-1"},
		{name: "schema violation", variables: `{"subjectId":""}`, wantErr: true},
		{name: "not an object", variables: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got input
			err := DecodeVariables(createMockJob(1, tt.variables), "predict-burnout", v, &got)
			if tt.wantErr {
				assert.True(t, stderrors.Is(err, errors.ErrInvalidInput), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.SubjectID)
		})
	}
}

func TestDecodeVariables_WithoutValidator(t *testing.T) {
	var got map[string]interface{}
	vars, _ := json.Marshal(map[string]interface{}{"anything": 1})

	require.NoError(t, DecodeVariables(createMockJob(1, string(vars)), "unregistered", nil, &got))
	assert.Equal(t, float64(1), got["anything"])
}

func TestExecuteWithRetry(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	log := logger.NewTestLogger(t)

	t.Run("retries transient failures", func(t *testing.T) {
		calls := 0
		err := ExecuteWithRetry(context.Background(), rc, log, "ping", func(context.Context) error {
			calls++
			if calls < 3 {
				return stderrors.New("rpc error: code = Unavailable desc = connection refused")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent failure", func(t *testing.T) {
		calls := 0
		err := ExecuteWithRetry(context.Background(), rc, log, "ping", func(context.Context) error {
			calls++
			return stderrors.New("invalid argument")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after budget", func(t *testing.T) {
		calls := 0
		err := ExecuteWithRetry(context.Background(), rc, log, "ping", func(context.Context) error {
			calls++
			return errors.NewTimeoutError("zeebe", stderrors.New("deadline exceeded"))
		})
		require.Error(t, err)
		assert.Equal(t, 4, calls)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		slow := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
		err := ExecuteWithRetry(ctx, slow, log, "ping", func(context.Context) error {
			cancel()
			return stderrors.New("connection reset")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMapZeebeError(t *testing.T) {
	err := mapZeebeError(stderrors.New("context deadline exceeded"), "topology")
	assert.Equal(t, errors.ErrCodeTimeout, errors.Normalize(err).Code)

	err = mapZeebeError(stderrors.New("rpc error: code = Unavailable"), "topology")
	assert.Equal(t, errors.ErrCodeExternalService, errors.Normalize(err).Code)
	assert.True(t, isRetryableZeebeError(err))
}

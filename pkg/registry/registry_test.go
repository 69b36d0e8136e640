package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry("../../configs/activity-registry.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"predict-burnout", "generate-report", "evaluate-metric-alert", "generate-smart-alert"}, reg.TaskTypes())

	a, ok := reg.Find("generate-report")
	require.True(t, ok)
	assert.Equal(t, "wellbeing.report.generate", a.ID)
	assert.Contains(t, a.InputSchema, "required")

	_, ok = reg.Find("missing")
	assert.False(t, ok)
}

func TestParse_RejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`{"activities":[{"id":"a","taskType":"x"},{"id":"b","taskType":"x"}]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"activities":[{"id":"a"}]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

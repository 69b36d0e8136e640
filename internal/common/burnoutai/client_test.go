package burnoutai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/models"
)

func createTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL + "/"
	cfg.HealthTimeout = 200 * time.Millisecond
	cfg.AnalyzeTimeout = 200 * time.Millisecond
	cfg.PredictionTimeout = 200 * time.Millisecond
	return NewClient(cfg, nil, logger.NewTestLogger(t))
}

func testSummary() *models.BiometricAnalysisSummary {
	return &models.BiometricAnalysisSummary{
		AvgHeartRate:   88,
		DataPointCount: 10,
		MedianHRV:      models.Float(40),
	}
}

func TestClient_IsAvailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    bool
	}{
		{
			name: "healthy",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/burnout/health", r.URL.Path)
				_, _ = io.WriteString(w, `{"status":"healthy"}`)
			},
			want: true,
		},
		{
			name: "degraded status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"status":"degraded"}`)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `ok`)
			},
		},
		{
			name: "slower than the probe timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
				_, _ = io.WriteString(w, `{"status":"healthy"}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := createTestClient(t, tt.handler)
			assert.Equal(t, tt.want, c.IsAvailable(context.Background()))
		})
	}
}

func TestClient_IsAvailable_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:1"
	c := NewClient(cfg, nil, logger.NewNoOpLogger())

	assert.False(t, c.IsAvailable(context.Background()))
}

func TestClient_AnalyzeWithAI_Success(t *testing.T) {
	var gotQuery, gotAuth string
	var gotBody map[string]interface{}

	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/burnout/analyze-custom", r.URL.Path)
		gotQuery = r.URL.Query().Get("user_id")
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		_, _ = io.WriteString(w, `{
			"user_id": 42,
			"prediction": {"burnout_probability": 0.82, "burnout_prediction": 1, "burnout_level": "high", "risk_category": "severe"},
			"interventions": [{"type": "rest", "days": 2}]
		}`)
	})

	result := c.AnalyzeWithAI(context.Background(), "42", testSummary(), nil, "tok")
	require.NotNil(t, result)

	assert.Equal(t, 0.82, result.BurnoutProbability)
	assert.Equal(t, "high", result.BurnoutLevel)
	assert.Equal(t, "severe", result.RiskCategory)
	assert.JSONEq(t, `[{"type": "rest", "days": 2}]`, string(result.Interventions))
	assert.Contains(t, result.UsedDefaults, "sleep_score")
	assert.NotContains(t, result.UsedDefaults, "avg_pulse")

	assert.Equal(t, "42", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.NotContains(t, gotBody, "user_id")
	assert.Equal(t, 88.0, gotBody["avg_pulse"])
}

func TestClient_AnalyzeWithAI_NoInterventions(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"prediction":{"burnout_probability":0.1,"burnout_level":"low","risk_category":"none"},"interventions":null}`)
	})

	result := c.AnalyzeWithAI(context.Background(), "7", testSummary(), &models.WorkMetrics{}, "")
	require.NotNil(t, result)
	assert.Nil(t, result.Interventions)
}

func TestClient_AnalyzeWithAI_FailuresReturnNil(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "model not loaded",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = io.WriteString(w, `{"detail":"Modelo no disponible"}`)
			},
		},
		{
			name: "probability out of range",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"prediction":{"burnout_probability":1.7,"burnout_level":"high","risk_category":"x"}}`)
			},
		},
		{
			name: "missing prediction",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"summary":{}}`)
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := createTestClient(t, tt.handler)
			assert.Nil(t, c.AnalyzeWithAI(context.Background(), "1", testSummary(), nil, ""))
		})
	}
}

func TestClient_GetPrediction(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/burnout/predict/42":
			_, _ = io.WriteString(w, `{"burnout_probability":0.37}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	got := c.GetPrediction(context.Background(), "42", "")
	require.NotNil(t, got)
	assert.Equal(t, 0.37, *got)

	assert.Nil(t, c.GetPrediction(context.Background(), "404", ""))
}

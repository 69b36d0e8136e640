// Package burnoutai talks to the remote burnout-prediction microservice. Every
// failure is absorbed: callers get nil or false, never an error.
package burnoutai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "burnout-workers/internal/common/errors"
	apphttp "burnout-workers/internal/common/http"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/models"
)

const serviceName = "burnout-ai"

type Config struct {
	BaseURL           string
	HealthTimeout     time.Duration
	AnalyzeTimeout    time.Duration
	PredictionTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           "http://burnout-microservice:8001",
		HealthTimeout:     2 * time.Second,
		AnalyzeTimeout:    5 * time.Second,
		PredictionTimeout: 3 * time.Second,
	}
}

type Client struct {
	config Config
	http   *apphttp.Client
	logger logger.Logger
}

func NewClient(config Config, httpClient *apphttp.Client, log logger.Logger) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if httpClient == nil {
		httpClient = apphttp.NewClient(0)
	}
	return &Client{
		config: config,
		http:   httpClient,
		logger: log.WithFields(map[string]interface{}{"component": serviceName}),
	}
}

type analysisResponse struct {
	Prediction struct {
		BurnoutProbability float64 `json:"burnout_probability"`
		BurnoutLevel       string  `json:"burnout_level"`
		RiskCategory       string  `json:"risk_category"`
	} `json:"prediction"`
	Interventions json.RawMessage `json:"interventions"`
}

// IsAvailable probes the health endpoint. True only when the service reports
// status "healthy".
func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.config.HealthTimeout)
	defer cancel()

	resp, err := c.http.DoJSON(ctx, http.MethodGet, c.config.BaseURL+"/api/burnout/health", "", nil)
	if err != nil {
		c.unavailable("health", err)
		return false
	}
	if !resp.OK() {
		c.unavailable("health", fmt.Errorf("status %d", resp.StatusCode))
		return false
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body, &health); err != nil {
		c.unavailable("health", err)
		return false
	}
	return health.Status == "healthy"
}

// AnalyzeWithAI sends the transformed feature vector for one subject. The subject
// id travels only in the query string.
func (c *Client) AnalyzeWithAI(ctx context.Context, subjectID string, summary *models.BiometricAnalysisSummary, wm *models.WorkMetrics, authToken string) *models.ExternalRiskAssessment {
	body, usedDefaults := BuildRequest(summary, wm)

	ctx, cancel := context.WithTimeout(ctx, c.config.AnalyzeTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/burnout/analyze-custom?user_id=%s", c.config.BaseURL, url.QueryEscape(subjectID))
	c.logger.Debug("Sending AI analysis", map[string]interface{}{
		"subjectId":    subjectID,
		"usedDefaults": usedDefaults,
	})

	resp, err := c.http.DoJSON(ctx, http.MethodPost, endpoint, authToken, body)
	if err != nil {
		c.unavailable("analyze", err)
		return nil
	}
	if !resp.OK() {
		c.unavailable("analyze", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(resp.Body)))
		return nil
	}
	if violation := validate(analysisSchema, resp.Body); violation != "" {
		c.unavailable("analyze", fmt.Errorf("unexpected response: %s", violation))
		return nil
	}

	var parsed analysisResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		c.unavailable("analyze", err)
		return nil
	}

	result := &models.ExternalRiskAssessment{
		BurnoutProbability: parsed.Prediction.BurnoutProbability,
		BurnoutLevel:       parsed.Prediction.BurnoutLevel,
		RiskCategory:       parsed.Prediction.RiskCategory,
		UsedDefaults:       usedDefaults,
	}
	if len(parsed.Interventions) > 0 && string(parsed.Interventions) != "null" {
		result.Interventions = parsed.Interventions
	}

	c.logger.Info("AI analysis completed", map[string]interface{}{
		"subjectId":    subjectID,
		"burnoutLevel": result.BurnoutLevel,
	})
	return result
}

// GetPrediction fetches the service's stored probability for a subject.
func (c *Client) GetPrediction(ctx context.Context, subjectID, authToken string) *float64 {
	ctx, cancel := context.WithTimeout(ctx, c.config.PredictionTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/burnout/predict/%s", c.config.BaseURL, url.PathEscape(subjectID))
	resp, err := c.http.DoJSON(ctx, http.MethodGet, endpoint, authToken, nil)
	if err != nil {
		c.unavailable("predict", err)
		return nil
	}
	if !resp.OK() {
		c.unavailable("predict", fmt.Errorf("status %d", resp.StatusCode))
		return nil
	}
	if violation := validate(predictionSchema, resp.Body); violation != "" {
		c.unavailable("predict", fmt.Errorf("unexpected response: %s", violation))
		return nil
	}

	var parsed struct {
		BurnoutProbability float64 `json:"burnout_probability"`
	}
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		c.unavailable("predict", err)
		return nil
	}
	return &parsed.BurnoutProbability
}

func (c *Client) unavailable(op string, err error) {
	stdErr := apperrors.NewUpstreamUnavailableError(serviceName, err)
	c.logger.Warn("AI service unavailable", map[string]interface{}{
		"operation": op,
		"errorCode": string(stdErr.Code),
		"error":     stdErr.Details,
	})
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

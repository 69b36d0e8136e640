package reports

import (
	"context"
	"encoding/json"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"burnout-workers/internal/alerts"
	"burnout-workers/internal/common/cache"
	apperrors "burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/models"
)

// MockPredictor is a mock implementation of Predictor
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, req models.PredictionRequest) *models.PredictionResult {
	args := m.Called(ctx, req)
	return args.Get(0).(*models.PredictionResult)
}

// MockAlertLister is a mock implementation of AlertLister
type MockAlertLister struct {
	mock.Mock
}

func (m *MockAlertLister) List(ctx context.Context, subjectID string) ([]models.ThresholdAlert, error) {
	args := m.Called(ctx, subjectID)
	list, _ := args.Get(0).([]models.ThresholdAlert)
	return list, args.Error(1)
}

// MockSmartAlertSource is a mock implementation of SmartAlertSource
type MockSmartAlertSource struct {
	mock.Mock
}

func (m *MockSmartAlertSource) Get(ctx context.Context, subjectID, authToken string) *alerts.SmartAlert {
	args := m.Called(ctx, subjectID, authToken)
	smart, _ := args.Get(0).(*alerts.SmartAlert)
	return smart
}

// smartAlertFor serves the smart alert a widget-window run would cache for result.
func smartAlertFor(result *models.PredictionResult) *MockSmartAlertSource {
	m := new(MockSmartAlertSource)
	m.On("Get", mock.Anything, result.SubjectID, mock.Anything).Return(&alerts.SmartAlert{
		SubjectID:   result.SubjectID,
		Alert:       result.Alert,
		RiskLevel:   result.Merged.Level,
		Source:      result.Merged.Source,
		GeneratedAt: result.GeneratedAt,
	})
	return m
}

// MockCache is a mock implementation of cache.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Del(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

var reportTime = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func highRiskResult() *models.PredictionResult {
	return &models.PredictionResult{
		SubjectID: "emp-3",
		Merged: models.MergedRiskAssessment{
			Score:               0.82,
			Level:               models.RiskLevelHigh,
			Confidence:          0.92,
			ContributingFactors: []string{"elevated heart rate"},
			LocalScore:          0.7,
			AIScore:             models.Float(0.87),
			Source:              models.SourceHybridAI,
		},
		Summary: &models.BiometricAnalysisSummary{AvgHeartRate: 93.2, DataPointCount: 40, MedianHRV: models.Float(24)},
		AI: &models.ExternalRiskAssessment{
			BurnoutProbability: 0.87,
			BurnoutLevel:       "high",
			RiskCategory:       "critical",
			Interventions:      json.RawMessage(`[{"type":"rest"}]`),
		},
		Alert: &models.Alert{
			Type:            "BURNOUT_RISK_HIGH",
			Severity:        models.SeverityCritical,
			Timestamp:       reportTime,
			Recommendations: []string{"rest"},
			RequiresAction:  true,
		},
		Interventions: []models.Intervention{{ID: "workload_reduction", Name: "Immediate workload reduction", Priority: models.PriorityUrgent}},
		GeneratedAt:   reportTime,
	}
}

func createTestAssembler(t *testing.T, c cache.Cache, predictor Predictor, lister AlertLister, smart SmartAlertSource) *Assembler {
	a := NewAssembler(Config{}, predictor, lister, smart, c, logger.NewTestLogger(t))
	a.now = func() time.Time { return reportTime }
	ids := 0
	a.newID = func() string {
		ids++
		return fmt.Sprintf("report-%d", ids)
	}
	return a
}

func createRedisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client), mr
}

func TestAssembler_Report_CachedCallsAreByteIdentical(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatXML} {
		t.Run(format, func(t *testing.T) {
			c, mr := createRedisCache(t)
			predictor := new(MockPredictor)
			predictor.On("Predict", mock.Anything, models.PredictionRequest{SubjectID: "emp-3", AuthToken: "tok"}).Return(highRiskResult())
			lister := new(MockAlertLister)
			lister.On("List", mock.Anything, "emp-3").Return([]models.ThresholdAlert{{Metric: "stress_level", Value: 91, Timestamp: reportTime}}, nil)

			a := createTestAssembler(t, c, predictor, lister, smartAlertFor(highRiskResult()))
			ctx := context.Background()

			first, err := a.Report(ctx, "emp-3", format, "tok")
			require.NoError(t, err)
			second, err := a.Report(ctx, "emp-3", format, "tok")
			require.NoError(t, err)

			assert.Equal(t, first, second)
			predictor.AssertNumberOfCalls(t, "Predict", 1)
			assert.Equal(t, DefaultTTL, mr.TTL("report:emp-3:"+format))

			mr.FastForward(DefaultTTL + time.Second)
			third, err := a.Report(ctx, "emp-3", format, "tok")
			require.NoError(t, err)
			assert.NotEqual(t, first, third, "a rebuilt report carries a new report id")
			predictor.AssertNumberOfCalls(t, "Predict", 2)
		})
	}
}

func TestAssembler_Report_JSONShape(t *testing.T) {
	c, _ := createRedisCache(t)
	predictor := new(MockPredictor)
	predictor.On("Predict", mock.Anything, mock.Anything).Return(highRiskResult())
	lister := new(MockAlertLister)
	lister.On("List", mock.Anything, "emp-3").Return([]models.ThresholdAlert{{Metric: "stress_level", Value: 91, Timestamp: reportTime}}, nil)

	out, err := createTestAssembler(t, c, predictor, lister, smartAlertFor(highRiskResult())).Report(context.Background(), "emp-3", "", "")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "report-1", doc["report_id"])
	assert.Equal(t, "emp-3", doc["subject_id"])
	assert.Equal(t, "2026-03-02T10:00:00Z", doc["report_date"])

	prediction := doc["prediction"].(map[string]interface{})
	assert.Equal(t, 0.82, prediction["burnout_probability"])
	assert.Equal(t, "hybrid_ai", prediction["source"])

	alertsDoc := doc["alerts"].(map[string]interface{})
	assert.Len(t, alertsDoc["threshold"], 1)
	assert.Equal(t, float64(2), alertsDoc["total"])
	assert.NotNil(t, alertsDoc["smart"])

	summary := doc["summary"].(map[string]interface{})
	assert.Equal(t, true, summary["requires_action"])
	assert.Equal(t, "partial", summary["data_quality"])
}

func TestAssembler_Report_XMLHasSingleRoot(t *testing.T) {
	c, _ := createRedisCache(t)
	predictor := new(MockPredictor)
	predictor.On("Predict", mock.Anything, mock.Anything).Return(highRiskResult())
	lister := new(MockAlertLister)
	lister.On("List", mock.Anything, "emp-3").Return(nil, nil)

	out, err := createTestAssembler(t, c, predictor, lister, smartAlertFor(highRiskResult())).Report(context.Background(), "emp-3", "XML", "")
	require.NoError(t, err)

	body := string(out)
	assert.True(t, strings.HasPrefix(body, xml.Header))
	assert.Contains(t, body, "<WellbeingReport>")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), "</WellbeingReport>"))
	assert.Contains(t, body, "<risk_level>high</risk_level>")

	var parsed struct {
		XMLName   xml.Name `xml:"WellbeingReport"`
		SubjectID string   `xml:"subject_id"`
		Factors   []string `xml:"local_risk>contributing_factors>factor"`
	}
	require.NoError(t, xml.Unmarshal(out, &parsed))
	assert.Equal(t, "emp-3", parsed.SubjectID)
}

func TestAssembler_Report_CacheFailureDegrades(t *testing.T) {
	m := new(MockCache)
	m.On("Get", mock.Anything, "report:emp-3:json", mock.Anything).Return(false, stderrors.New("connection refused"))
	m.On("Set", mock.Anything, "report:emp-3:json", mock.Anything, DefaultTTL).Return(stderrors.New("connection refused"))

	predictor := new(MockPredictor)
	predictor.On("Predict", mock.Anything, mock.Anything).Return(highRiskResult())
	lister := new(MockAlertLister)
	lister.On("List", mock.Anything, "emp-3").Return(nil, apperrors.NewCacheFailureError("get alerts:emp-3", stderrors.New("connection refused")))

	out, err := createTestAssembler(t, m, predictor, lister, smartAlertFor(highRiskResult())).Report(context.Background(), "emp-3", "json", "")
	require.NoError(t, err)

	var doc WellbeingReport
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Empty(t, doc.Alerts.Threshold)
	assert.Equal(t, 1, doc.Alerts.Total)
	m.AssertExpectations(t)
}

func TestAssembler_Report_FallbackIsNotCached(t *testing.T) {
	c, mr := createRedisCache(t)
	predictor := new(MockPredictor)
	predictor.On("Predict", mock.Anything, mock.Anything).Return(&models.PredictionResult{
		SubjectID:     "emp-3",
		Merged:        models.MergedRiskAssessment{Score: 0.3, Level: models.RiskLevelUnknown, ContributingFactors: []string{}, Source: models.SourceFallback},
		Interventions: []models.Intervention{},
		GeneratedAt:   reportTime,
	})
	lister := new(MockAlertLister)
	lister.On("List", mock.Anything, "emp-3").Return([]models.ThresholdAlert{}, nil)

	smart := new(MockSmartAlertSource)
	smart.On("Get", mock.Anything, "emp-3", "").Return(&alerts.SmartAlert{SubjectID: "emp-3", RiskLevel: models.RiskLevelUnknown, Source: models.SourceFallback})

	out, err := createTestAssembler(t, c, predictor, lister, smart).Report(context.Background(), "emp-3", "json", "")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"source":"fallback"`)
	assert.Contains(t, string(out), `"smart":null`)
	assert.False(t, mr.Exists("report:emp-3:json"))
}

func TestAssembler_Assemble_SmartAlertComesFromSmartAlertCache(t *testing.T) {
	c, _ := createRedisCache(t)
	ctx := context.Background()

	cachedAlert := &models.Alert{
		Type:            "BURNOUT_RISK_MEDIUM",
		Severity:        models.SeverityWarning,
		Timestamp:       reportTime.Add(-5 * time.Minute),
		Recommendations: []string{"take a short break"},
	}
	require.NoError(t, c.Set(ctx, cache.SmartAlertsKey("emp-3"), &alerts.SmartAlert{
		SubjectID:   "emp-3",
		Alert:       cachedAlert,
		RiskLevel:   models.RiskLevelMedium,
		Source:      models.SourceHybridAI,
		GeneratedAt: reportTime.Add(-5 * time.Minute),
	}, time.Minute))

	predictor := new(MockPredictor)
	predictor.On("Predict", mock.Anything, models.PredictionRequest{SubjectID: "emp-3", AuthToken: "tok"}).Return(highRiskResult())
	lister := new(MockAlertLister)
	lister.On("List", mock.Anything, "emp-3").Return([]models.ThresholdAlert{{Metric: "heart_rate", Value: 120, Timestamp: reportTime}}, nil)
	smart := alerts.NewSmartAlertService(predictor, c, time.Minute, 0, logger.NewTestLogger(t))

	report, fallback := createTestAssembler(t, c, predictor, lister, smart).Assemble(ctx, "emp-3", "tok")
	require.False(t, fallback)

	require.NotNil(t, report.Alerts.Smart)
	assert.Equal(t, "BURNOUT_RISK_MEDIUM", report.Alerts.Smart.Type)
	assert.Equal(t, models.SeverityWarning, report.Alerts.Smart.Severity)
	assert.NotEqual(t, highRiskResult().Alert.Type, report.Alerts.Smart.Type)
	assert.Equal(t, 2, report.Alerts.Total)
	// The cached entry is served, so only the report's own prediction runs.
	predictor.AssertNumberOfCalls(t, "Predict", 1)
}

func TestAssembler_Assemble_NoSmartAlert(t *testing.T) {
	c, _ := createRedisCache(t)
	predictor := new(MockPredictor)
	predictor.On("Predict", mock.Anything, mock.Anything).Return(highRiskResult())
	lister := new(MockAlertLister)
	lister.On("List", mock.Anything, "emp-3").Return([]models.ThresholdAlert{}, nil)
	smart := new(MockSmartAlertSource)
	smart.On("Get", mock.Anything, "emp-3", "").Return(&alerts.SmartAlert{SubjectID: "emp-3", RiskLevel: models.RiskLevelLow, Source: models.SourceHybridAI})

	report, _ := createTestAssembler(t, c, predictor, lister, smart).Assemble(context.Background(), "emp-3", "")
	assert.Nil(t, report.Alerts.Smart)
	assert.Equal(t, 0, report.Alerts.Total)
	smart.AssertExpectations(t)
}

func TestAssembler_Report_InvalidInput(t *testing.T) {
	a := createTestAssembler(t, new(MockCache), new(MockPredictor), new(MockAlertLister), new(MockSmartAlertSource))

	_, err := a.Report(context.Background(), "emp-3", "pdf", "")
	assert.True(t, stderrors.Is(err, apperrors.ErrInvalidInput))

	_, err = a.Report(context.Background(), "  ", "json", "")
	assert.True(t, stderrors.Is(err, apperrors.ErrInvalidInput))
}

func TestNormalizeFormat(t *testing.T) {
	tests := map[string]string{"": "json", "json": "json", "JSON": "json", " xml ": "xml"}
	for in, want := range tests {
		got, err := NormalizeFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

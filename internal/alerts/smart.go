package alerts

import (
	"context"
	"time"

	"burnout-workers/internal/common/cache"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/metrics"
	"burnout-workers/internal/models"
)

const (
	DefaultSmartAlertTTL      = 10 * time.Minute
	DefaultSmartAlertLookback = 24 * time.Hour
)

// Predictor runs the prediction pipeline. It never fails; degraded runs carry the
// fallback source.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) *models.PredictionResult
}

// SmartAlert is the cached outcome of one widget-window prediction. Alert is nil when
// the subject is at low or unknown risk.
type SmartAlert struct {
	SubjectID   string           `json:"subject_id" xml:"subject_id"`
	Alert       *models.Alert    `json:"alert" xml:"alert,omitempty"`
	RiskLevel   models.RiskLevel `json:"risk_level" xml:"risk_level"`
	Source      string           `json:"source" xml:"source"`
	GeneratedAt time.Time        `json:"generated_at" xml:"generated_at"`
}

type SmartAlertService struct {
	predictor Predictor
	cache     cache.Cache
	ttl       time.Duration
	lookback  time.Duration
	logger    logger.Logger
}

func NewSmartAlertService(predictor Predictor, c cache.Cache, ttl, lookback time.Duration, log logger.Logger) *SmartAlertService {
	if ttl <= 0 {
		ttl = DefaultSmartAlertTTL
	}
	if lookback <= 0 {
		lookback = DefaultSmartAlertLookback
	}
	return &SmartAlertService{
		predictor: predictor,
		cache:     c,
		ttl:       ttl,
		lookback:  lookback,
		logger:    log.WithFields(map[string]interface{}{"component": "smart-alerts"}),
	}
}

// Get serves the cached smart alert or runs the pipeline on the widget window. Cache
// failures are logged and the call proceeds uncached. Fallback predictions are
// returned but never cached.
func (s *SmartAlertService) Get(ctx context.Context, subjectID, authToken string) *SmartAlert {
	key := cache.SmartAlertsKey(subjectID)
	log := s.logger.WithFields(map[string]interface{}{"subjectId": subjectID})

	var cached SmartAlert
	found, err := s.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("smart_alerts", "error").Inc()
		log.Warn("Smart alert cache read failed", map[string]interface{}{"error": err})
	case found:
		metrics.CacheLookups.WithLabelValues("smart_alerts", "hit").Inc()
		return &cached
	default:
		metrics.CacheLookups.WithLabelValues("smart_alerts", "miss").Inc()
	}

	result := s.predictor.Predict(ctx, models.PredictionRequest{
		SubjectID: subjectID,
		Lookback:  s.lookback,
		AuthToken: authToken,
	})
	smart := &SmartAlert{
		SubjectID:   subjectID,
		Alert:       result.Alert,
		RiskLevel:   result.Merged.Level,
		Source:      result.Merged.Source,
		GeneratedAt: result.GeneratedAt,
	}

	if result.Merged.Source == models.SourceFallback {
		return smart
	}
	if err := s.cache.Set(ctx, key, smart, s.ttl); err != nil {
		log.Warn("Smart alert cache write failed", map[string]interface{}{"error": err})
	}
	return smart
}

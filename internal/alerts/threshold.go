package alerts

import (
	"context"
	"strings"
	"time"

	"burnout-workers/internal/common/cache"
	apperrors "burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/metrics"
	"burnout-workers/internal/models"
)

const (
	DefaultMetricThreshold = 80.0
	DefaultThresholdTTL    = time.Hour
)

// ThresholdStore records realtime metric readings that crossed the threshold. The
// per-subject list lives in the cache and expires as a whole.
type ThresholdStore struct {
	cache     cache.Cache
	threshold float64
	ttl       time.Duration
	logger    logger.Logger
	now       func() time.Time
}

func NewThresholdStore(c cache.Cache, threshold float64, ttl time.Duration, log logger.Logger) *ThresholdStore {
	if threshold <= 0 {
		threshold = DefaultMetricThreshold
	}
	if ttl <= 0 {
		ttl = DefaultThresholdTTL
	}
	return &ThresholdStore{
		cache:     c,
		threshold: threshold,
		ttl:       ttl,
		logger:    log.WithFields(map[string]interface{}{"component": "threshold-alerts"}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate raises an alert when value is strictly above the threshold and appends it
// to the subject's list. A nil alert means the reading was within range. When the
// list cannot be persisted the alert is still returned alongside the error.
func (s *ThresholdStore) Evaluate(ctx context.Context, subjectID, metric string, value float64) (*models.ThresholdAlert, error) {
	alert, _, err := s.evaluate(ctx, subjectID, metric, value, false)
	return alert, err
}

// Record evaluates the reading like Evaluate and also returns how many alerts the
// subject's list holds afterwards. The count comes from the list that was written,
// so a raised alert is never followed by a second read.
func (s *ThresholdStore) Record(ctx context.Context, subjectID, metric string, value float64) (*models.ThresholdAlert, int, error) {
	return s.evaluate(ctx, subjectID, metric, value, true)
}

func (s *ThresholdStore) evaluate(ctx context.Context, subjectID, metric string, value float64, count bool) (*models.ThresholdAlert, int, error) {
	if strings.TrimSpace(subjectID) == "" || strings.TrimSpace(metric) == "" {
		return nil, 0, apperrors.NewInvalidInputError("subjectId and metric are required")
	}
	if value <= s.threshold {
		if !count {
			return nil, 0, nil
		}
		active, err := s.List(ctx, subjectID)
		if err != nil {
			return nil, 0, err
		}
		return nil, len(active), nil
	}

	alert := &models.ThresholdAlert{Metric: metric, Value: value, Timestamp: s.now()}
	metrics.ThresholdAlertsRaised.WithLabelValues(metric).Inc()

	key := cache.AlertsKey(subjectID)
	existing, err := s.List(ctx, subjectID)
	if err != nil {
		return alert, 0, err
	}
	existing = append(existing, *alert)
	if err := s.cache.Set(ctx, key, existing, s.ttl); err != nil {
		s.logger.Error("Failed to store threshold alert", map[string]interface{}{
			"subjectId": subjectID,
			"metric":    metric,
			"error":     err,
		})
		return alert, 0, apperrors.NewCacheFailureError("set "+key, err)
	}

	s.logger.Info("Threshold alert raised", map[string]interface{}{
		"subjectId": subjectID,
		"metric":    metric,
		"value":     value,
		"count":     len(existing),
	})
	return alert, len(existing), nil
}

// List returns the subject's active threshold alerts, oldest first. An absent or
// expired list is empty, not an error.
func (s *ThresholdStore) List(ctx context.Context, subjectID string) ([]models.ThresholdAlert, error) {
	var list []models.ThresholdAlert
	found, err := s.cache.Get(ctx, cache.AlertsKey(subjectID), &list)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("alerts", "error").Inc()
		return nil, apperrors.NewCacheFailureError("get "+cache.AlertsKey(subjectID), err)
	}
	if !found || list == nil {
		metrics.CacheLookups.WithLabelValues("alerts", "miss").Inc()
		return []models.ThresholdAlert{}, nil
	}
	metrics.CacheLookups.WithLabelValues("alerts", "hit").Inc()
	return list, nil
}

// Package timeseries reads wearable biometric samples from Elasticsearch.
package timeseries

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/models"
)

const (
	fieldHeartRate = "hr_bpm"
	fieldHRV       = "hrv_rmssd_ms"
	fieldEDA       = "eda_microsiemens"
)

const (
	pitKeepAlive    = "1m"
	pitCloseTimeout = 5 * time.Second
)

type Config struct {
	Index       string
	Measurement string
	SubjectTag  string
	PageSize    int
}

// Store implements the biometric source port.
type Store struct {
	client *elasticsearch.Client
	config Config
	logger logger.Logger
	now    func() time.Time
}

func NewStore(client *elasticsearch.Client, config Config, log logger.Logger) *Store {
	if config.PageSize <= 0 {
		config.PageSize = 5000
	}
	return &Store{
		client: client,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "timeseries"}),
		now:    time.Now,
	}
}

type searchHit struct {
	Source map[string]json.RawMessage `json:"_source"`
	Sort   []interface{}              `json:"sort"`
}

type searchResponse struct {
	PitID string `json:"pit_id"`
	Hits  struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// FetchSamples returns every sample the subject recorded within lookback, in
// timestamp order. The window is read page by page inside one point in time.
// Failures are TRANSIENT_QUERY_FAILURE errors.
func (s *Store) FetchSamples(ctx context.Context, subjectID string, lookback time.Duration) ([]models.BiometricSample, error) {
	since := s.now().Add(-lookback)

	pitID, err := s.openPIT(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { s.closePIT(pitID) }()

	var (
		samples []models.BiometricSample
		after   []interface{}
		skipped int
		pages   int
		total   int
	)
	for {
		page, err := s.searchPage(ctx, buildWindowQuery(
			s.config.Measurement, s.config.SubjectTag, subjectID, since, pitID, s.config.PageSize, after))
		if err != nil {
			return nil, err
		}
		pages++
		if page.PitID != "" {
			pitID = page.PitID
		}
		total = page.Hits.Total.Value
		if samples == nil {
			samples = make([]models.BiometricSample, 0, total)
		}

		for _, hit := range page.Hits.Hits {
			sample, ok := s.toSample(subjectID, hit.Source)
			if !ok {
				skipped++
				continue
			}
			samples = append(samples, sample)
		}

		hits := page.Hits.Hits
		if len(hits) < s.config.PageSize || len(hits[len(hits)-1].Sort) == 0 {
			break
		}
		after = hits[len(hits)-1].Sort
	}

	if read := len(samples) + skipped; read < total {
		s.logger.Warn("Biometric window read short of reported hits", map[string]interface{}{
			"subjectId": subjectID,
			"read":      read,
			"total":     total,
		})
	}

	s.logger.Debug("Fetched biometric samples", map[string]interface{}{
		"subjectId": subjectID,
		"samples":   len(samples),
		"skipped":   skipped,
		"pages":     pages,
		"lookback":  lookback.String(),
	})
	return samples, nil
}

func (s *Store) openPIT(ctx context.Context) (string, error) {
	res, err := s.client.OpenPointInTime(
		[]string{s.config.Index},
		pitKeepAlive,
		s.client.OpenPointInTime.WithContext(ctx),
	)
	if err != nil {
		return "", apperrors.NewTransientQueryFailureError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", apperrors.NewTransientQueryFailureError("elasticsearch",
			fmt.Errorf("open point in time %s: %s", s.config.Index, res.Status()))
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", apperrors.NewTransientQueryFailureError("elasticsearch", fmt.Errorf("decode point in time: %w", err))
	}
	if parsed.ID == "" {
		return "", apperrors.NewTransientQueryFailureError("elasticsearch", fmt.Errorf("open point in time %s: empty id", s.config.Index))
	}
	return parsed.ID, nil
}

// closePIT releases the point in time on its own deadline so a cancelled
// request context still frees it.
func (s *Store) closePIT(pitID string) {
	ctx, cancel := context.WithTimeout(context.Background(), pitCloseTimeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"id": pitID})
	res, err := s.client.ClosePointInTime(
		s.client.ClosePointInTime.WithContext(ctx),
		s.client.ClosePointInTime.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		s.logger.Warn("Failed to close point in time", map[string]interface{}{"error": err.Error()})
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.logger.Warn("Failed to close point in time", map[string]interface{}{"status": res.Status()})
	}
}

func (s *Store) searchPage(ctx context.Context, query map[string]interface{}) (*searchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, apperrors.NewTransientQueryFailureError("elasticsearch", err)
	}

	// A point-in-time search names no index.
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, apperrors.NewTransientQueryFailureError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewTransientQueryFailureError("elasticsearch",
			fmt.Errorf("search %s: %s", s.config.Index, res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewTransientQueryFailureError("elasticsearch", fmt.Errorf("decode response: %w", err))
	}
	return &parsed, nil
}

// toSample pivots one document into a sample. Documents without a parseable
// timestamp are dropped; unparseable channel values become nil.
func (s *Store) toSample(subjectID string, src map[string]json.RawMessage) (models.BiometricSample, bool) {
	var ts time.Time
	raw, ok := src["@timestamp"]
	if !ok || json.Unmarshal(raw, &ts) != nil {
		return models.BiometricSample{}, false
	}
	return models.BiometricSample{
		Timestamp:       ts,
		SubjectID:       subjectID,
		HeartRateBPM:    numberField(src, fieldHeartRate),
		HRVRMSSDMs:      numberField(src, fieldHRV),
		EDAMicrosiemens: numberField(src, fieldEDA),
	}, true
}

func numberField(src map[string]json.RawMessage, key string) *float64 {
	raw, ok := src[key]
	if !ok {
		return nil
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

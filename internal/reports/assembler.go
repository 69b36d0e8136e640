// Package reports assembles the wellbeing report for a subject and renders it as
// JSON or XML. Rendered bytes are cached per subject and format.
package reports

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"strings"
	"time"

	"github.com/google/uuid"

	"burnout-workers/internal/alerts"
	"burnout-workers/internal/common/cache"
	apperrors "burnout-workers/internal/common/errors"
	"burnout-workers/internal/common/logger"
	"burnout-workers/internal/common/metrics"
	"burnout-workers/internal/models"
)

const (
	FormatJSON = "json"
	FormatXML  = "xml"

	DefaultTTL = 10 * time.Minute
)

// Predictor runs the prediction pipeline and never fails.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) *models.PredictionResult
}

// AlertLister returns the subject's active threshold alerts.
type AlertLister interface {
	List(ctx context.Context, subjectID string) ([]models.ThresholdAlert, error)
}

// SmartAlertSource serves the subject's smart alert, cached under
// smart_alerts:{subject}.
type SmartAlertSource interface {
	Get(ctx context.Context, subjectID, authToken string) *alerts.SmartAlert
}

// WellbeingReport is the rendered document. XML output has it as the single root.
type WellbeingReport struct {
	XMLName    xml.Name  `json:"-" xml:"WellbeingReport"`
	ReportID   string    `json:"report_id" xml:"report_id"`
	SubjectID  string    `json:"subject_id" xml:"subject_id"`
	ReportDate time.Time `json:"report_date" xml:"report_date"`
	models.PredictionPayload
	Alerts ReportAlerts `json:"alerts" xml:"alerts"`
}

// ReportAlerts is the union of the threshold alerts recorded for the subject and the
// subject's current smart alert.
type ReportAlerts struct {
	Threshold []models.ThresholdAlert `json:"threshold" xml:"threshold>alert"`
	Smart     *models.Alert           `json:"smart" xml:"smart,omitempty"`
	Total     int                     `json:"total" xml:"total"`
}

type Config struct {
	TTL time.Duration
}

type Assembler struct {
	predictor Predictor
	alerts    AlertLister
	smart     SmartAlertSource
	cache     cache.Cache
	config    Config
	logger    logger.Logger
	now       func() time.Time
	newID     func() string
}

func NewAssembler(config Config, predictor Predictor, alerts AlertLister, smart SmartAlertSource, c cache.Cache, log logger.Logger) *Assembler {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	return &Assembler{
		predictor: predictor,
		alerts:    alerts,
		smart:     smart,
		cache:     c,
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"component": "reports"}),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// NormalizeFormat maps an empty format to JSON and rejects anything but json or xml.
func NormalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatXML:
		return FormatXML, nil
	default:
		return "", apperrors.NewInvalidInputError("unsupported report format: " + format)
	}
}

// Report returns the rendered report, serving the cached bytes when present. Cache
// failures are logged and the report is built uncached. Reports built from a
// fallback prediction are not cached.
func (a *Assembler) Report(ctx context.Context, subjectID, format, authToken string) ([]byte, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(subjectID) == "" {
		return nil, apperrors.NewInvalidInputError("subjectId is required")
	}

	key := cache.ReportKey(subjectID, format)
	log := a.logger.WithFields(map[string]interface{}{"subjectId": subjectID, "format": format})

	var cached []byte
	found, err := a.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("report", "error").Inc()
		log.Warn("Report cache read failed, building uncached", map[string]interface{}{"error": err})
	case found:
		metrics.CacheLookups.WithLabelValues("report", "hit").Inc()
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("report", "miss").Inc()
	}

	report, fallback := a.Assemble(ctx, subjectID, authToken)
	out, err := Render(report, format)
	if err != nil {
		return nil, err
	}

	if fallback {
		log.Info("Report built from fallback prediction, not caching", nil)
		return out, nil
	}
	if err := a.cache.Set(ctx, key, out, a.config.TTL); err != nil {
		log.Warn("Report cache write failed", map[string]interface{}{"error": err})
	}
	return out, nil
}

// Assemble runs the pipeline and gathers the alerts. It reports whether the
// prediction degraded to the fallback.
func (a *Assembler) Assemble(ctx context.Context, subjectID, authToken string) (*WellbeingReport, bool) {
	result := a.predictor.Predict(ctx, models.PredictionRequest{SubjectID: subjectID, AuthToken: authToken})

	threshold, err := a.alerts.List(ctx, subjectID)
	if err != nil {
		a.logger.Warn("Threshold alerts unavailable for report", map[string]interface{}{
			"subjectId": subjectID,
			"error":     err,
		})
		threshold = []models.ThresholdAlert{}
	}

	var smartAlert *models.Alert
	if smart := a.smart.Get(ctx, subjectID, authToken); smart != nil {
		smartAlert = smart.Alert
	}

	total := len(threshold)
	if smartAlert != nil {
		total++
	}

	return &WellbeingReport{
		ReportID:          a.newID(),
		SubjectID:         subjectID,
		ReportDate:        a.now(),
		PredictionPayload: result.Payload(),
		Alerts: ReportAlerts{
			Threshold: threshold,
			Smart:     smartAlert,
			Total:     total,
		},
	}, result.Merged.Source == models.SourceFallback
}

// Render serializes the report. XML output carries the standard header.
func Render(report *WellbeingReport, format string) ([]byte, error) {
	switch format {
	case FormatXML:
		body, err := xml.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, apperrors.NewReportRenderError(format, err)
		}
		return append([]byte(xml.Header), body...), nil
	default:
		body, err := json.Marshal(report)
		if err != nil {
			return nil, apperrors.NewReportRenderError(format, err)
		}
		return body, nil
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	apperrors "burnout-workers/internal/common/errors"
	"burnout-workers/internal/models"
	"burnout-workers/internal/reports"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().Format(time.RFC3339),
	})
}

// handleReady pings every dependency independently of the prediction pipeline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.deps.ReadyTimeout)
	defer cancel()

	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.deps.Checks[name].Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
		s.logger.Warn("Readiness check failed", map[string]interface{}{"checks": checks})
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
		"time":   s.now().Format(time.RFC3339),
	})
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := s.subjectID(w, r)
	if !ok {
		return
	}
	req := models.PredictionRequest{SubjectID: subjectID, AuthToken: bearerToken(r)}
	if r.URL.Query().Get("window") == "widget" {
		req.Lookback = 24 * time.Hour
	}

	result := s.deps.Predictor.Predict(r.Context(), req)
	writeJSON(w, http.StatusOK, result.Payload())
}

func (s *Server) handleQuickPrediction(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := s.subjectID(w, r)
	if !ok {
		return
	}

	probability := s.deps.Quick.GetPrediction(r.Context(), subjectID, bearerToken(r))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject_id":          subjectID,
		"burnout_probability": probability,
		"available":           probability != nil,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := s.subjectID(w, r)
	if !ok {
		return
	}
	format, err := reports.NormalizeFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	body, err := s.deps.Reports.Report(r.Context(), subjectID, format, bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	contentType := "application/json"
	if format == reports.FormatXML {
		contentType = "application/xml; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := s.subjectID(w, r)
	if !ok {
		return
	}

	threshold, err := s.deps.Alerts.List(r.Context(), subjectID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	smart := s.deps.SmartAlerts.Get(r.Context(), subjectID, bearerToken(r))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject_id": subjectID,
		"threshold":  threshold,
		"smart":      smart,
	})
}

type metricReading struct {
	Metric string   `json:"metric"`
	Value  *float64 `json:"value"`
}

func (s *Server) handleMetricReading(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := s.subjectID(w, r)
	if !ok {
		return
	}

	var reading metricReading
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(&reading); err != nil {
		s.writeError(w, apperrors.NewInvalidInputError("body must be {\"metric\": string, \"value\": number}"))
		return
	}
	if reading.Value == nil {
		s.writeError(w, apperrors.NewInvalidInputError("value is required"))
		return
	}

	alert, err := s.deps.Alerts.Evaluate(r.Context(), subjectID, reading.Metric, *reading.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}

	status := http.StatusOK
	if alert != nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"alert_raised": alert != nil,
		"alert":        alert,
	})
}

func (s *Server) subjectID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("subjectId"))
	if id == "" {
		s.writeError(w, apperrors.NewInvalidInputError("subjectId is required"))
		return "", false
	}
	return id, true
}

// bearerToken returns the opaque token from the Authorization header, or "".
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr := apperrors.Normalize(err)

	status := http.StatusInternalServerError
	switch stdErr.Code {
	case apperrors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.ErrCodeCacheFailure, apperrors.ErrCodeTransientQueryFailure, apperrors.ErrCodeUpstreamUnavailable:
		status = http.StatusServiceUnavailable
	case apperrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    string(stdErr.Code),
			"message": stdErr.Message,
			"details": stdErr.Details,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

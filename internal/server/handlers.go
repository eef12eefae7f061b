package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/citypulse/dashboard/internal/alerts"
	"github.com/citypulse/dashboard/internal/api"
	"github.com/citypulse/dashboard/internal/dashboard"
	"github.com/citypulse/dashboard/internal/model"
	"github.com/citypulse/dashboard/internal/view"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Snapshot())
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Overview())
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Sensors())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	filter := parseAlertFilter(r.URL.Query())
	s.writeJSON(w, http.StatusOK, s.dash.Alerts(filter))
}

// acknowledgeRequest is the optional body of an acknowledge call
type acknowledgeRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["alert_id"]

	var req acknowledgeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.dash.Acknowledge(r.Context(), alertID, req.Notes)
	if err != nil {
		s.writeActionError(w, "acknowledge", alertID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

// resolveRequest is the body of a resolve call
type resolveRequest struct {
	Resolution string `json:"resolution"`
	Notes      string `json:"notes"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["alert_id"]

	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.dash.Resolve(r.Context(), alertID, req.Resolution, req.Notes)
	if err != nil {
		s.writeActionError(w, "resolve", alertID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleMetricSummaries(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Summaries())
}

func (s *Server) handleMetricSummary(w http.ResponseWriter, r *http.Request) {
	metricType := mux.Vars(r)["metric_type"]
	summary, ok := s.dash.Summary(metricType)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no readings for metric type %q", metricType))
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Notifications())
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	s.dash.DismissNotification(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// parseAlertFilter builds the alert filter from query parameters.
// Each axis accepts repeated parameters or comma-separated values.
func parseAlertFilter(q url.Values) view.Filter {
	f := view.Filter{}
	if vals := splitParam(q, "severity"); len(vals) > 0 {
		f.Severities = make(map[model.Severity]bool, len(vals))
		for _, v := range vals {
			f.Severities[model.Severity(v)] = true
		}
	}
	if vals := splitParam(q, "category"); len(vals) > 0 {
		f.Categories = make(map[string]bool, len(vals))
		for _, v := range vals {
			f.Categories[v] = true
		}
	}
	if vals := splitParam(q, "status"); len(vals) > 0 {
		f.Statuses = make(map[model.AlertStatus]bool, len(vals))
		for _, v := range vals {
			f.Statuses[model.AlertStatus(v)] = true
		}
	}
	return f
}

func splitParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// decodeBody decodes an optional JSON body. A missing or empty body
// leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeActionError maps an alert action failure to a status code
func (s *Server) writeActionError(w http.ResponseWriter, action, alertID string, err error) {
	s.log.Warn("Alert action failed",
		zap.String("action", action),
		zap.String("alert_id", alertID),
		zap.Error(err),
	)

	var statusErr *api.StatusError
	switch {
	case errors.Is(err, alerts.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "alert not found")
	case errors.Is(err, alerts.ErrIllegalTransition):
		s.writeError(w, http.StatusConflict, "alert status does not allow this action")
	case errors.Is(err, dashboard.ErrEmptyResolution):
		s.writeError(w, http.StatusBadRequest, "resolution text is required")
	case errors.Is(err, api.ErrUnauthorized):
		s.writeError(w, http.StatusBadGateway, "backend rejected the dashboard credential")
	case errors.As(err, &statusErr):
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("backend returned status %d", statusErr.Code))
	default:
		s.writeError(w, http.StatusBadGateway, "backend request failed")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

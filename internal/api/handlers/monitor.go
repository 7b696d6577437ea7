package handlers

import (
	"net/http"
	"strconv"

	"github.com/postforge/postforge/internal/monitor"
)

// GetRequestLogsHandler returns recent request logs.
func GetRequestLogsHandler(m *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
				limit = l
			}
		}
		sinceMinutes := 0
		if sinceStr := r.URL.Query().Get("since_minutes"); sinceStr != "" {
			if s, err := strconv.Atoi(sinceStr); err == nil && s > 0 {
				sinceMinutes = s
			}
		}

		logs := m.GetLogs(limit, sinceMinutes)
		respondJSON(w, http.StatusOK, map[string]any{
			"logs":  logs,
			"count": len(logs),
		})
	}
}

// GetRequestStatsHandler returns aggregated request statistics.
func GetRequestStatsHandler(m *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, m.GetStats())
	}
}

// ClearRequestLogsHandler clears all request logs.
func ClearRequestLogsHandler(m *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.Clear(); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to clear logs: "+err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ToggleLoggingHandler enables or disables request logging.
func ToggleLoggingHandler(m *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		m.SetEnabled(req.Enabled)
		respondJSON(w, http.StatusOK, map[string]any{
			"enabled": m.IsEnabled(),
		})
	}
}

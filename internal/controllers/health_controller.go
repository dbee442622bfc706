package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"ircstat/internal/services"
)

const (
	statusOK    = "ok"
	statusEmpty = "empty"
)

type HealthController struct {
	service     services.AggregationServiceInterface
	diagnostics DiagnosticsSource
	startTime   time.Time
}

type healthResponse struct {
	Status         string  `json:"status"`
	Uptime         string  `json:"uptime"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Plugins        int     `json:"plugins"`
	Channels       int     `json:"channels"`
	Generation     uint64  `json:"generation"`
	ReportsAge     string  `json:"reports_age,omitempty"`
	LinesMatched   int64   `json:"lines_matched"`
	LinesUnmatched int64   `json:"lines_unmatched"`
}

// Health answers 200 as long as the process serves; status is "empty" until
// the first reports are stored.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	diag := hc.diagnostics.Diagnostics()
	resp := healthResponse{
		Status:         statusOK,
		Uptime:         formatDuration(uptime),
		UptimeSeconds:  uptime.Seconds(),
		Plugins:        len(hc.service.Reports()),
		Channels:       len(hc.service.Channels()),
		Generation:     hc.service.Generation(),
		LinesMatched:   diag.LinesMatched,
		LinesUnmatched: diag.LinesUnmatched,
	}
	if resp.Generation == 0 {
		resp.Status = statusEmpty
	} else {
		resp.ReportsAge = formatDuration(time.Since(hc.service.Updated()))
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.AggregationServiceInterface, diagnostics DiagnosticsSource) *HealthController {
	return &HealthController{
		service:     service,
		diagnostics: diagnostics,
		startTime:   time.Now(),
	}
}

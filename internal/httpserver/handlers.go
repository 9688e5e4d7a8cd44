package httpserver

import (
	"encoding/json"
	"net/http"
	"time"
)

// healthResponse reports service liveness and the active hardening set.
type healthResponse struct {
	Status        string   `json:"status"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Headers       []string `json:"headers"`
	Upstream      string   `json:"upstream,omitempty"`
}

// health responds to liveness probes.
// GET /armor-health
func (h handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(serverStartTime).Seconds()),
		Headers:       h.policy.HeaderNames(),
	}
	if h.proxy != nil {
		resp.Upstream = h.cfg.Upstream.URL
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

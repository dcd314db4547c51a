package handler

import "net/http"

// handleHealthz handles GET /healthz, reporting the Redis front end's
// connection counts alongside a static "ok" so a load balancer health check
// and an operator glancing at the same endpoint get the same answer.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	reg := h.server.Registry()
	h.writeJSON(w, r, http.StatusOK, HealthzResponse{
		Status:           "ok",
		ClientsConnected: reg.ClientCount(),
		ClientsMonitors:  reg.MonitorCount(),
		Workers:          h.server.ClientPool().WorkerCount(),
		ReplWorkers:      h.server.ReplPool().WorkerCount(),
	})
}

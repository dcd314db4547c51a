package handler

import (
	"encoding/json"
	"net/http"
)

// handleDebugClients handles GET /debug/clients, returning the process-wide
// CLIENT LIST text fanned out across every worker in the client pool.
func (h *Handler) handleDebugClients(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, DebugClientsResponse{
		Clients: h.server.ClientPool().ListClients(),
	})
}

// handleDebugClientsKill handles POST /debug/clients/kill, killing every
// connection in the client pool matching the given id or address.
func (h *Handler) handleDebugClientsKill(w http.ResponseWriter, r *http.Request) {
	var req DebugClientsKillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "RN-SYS-4000", "invalid request body", nil)
		return
	}

	if req.ID == 0 && req.Addr == "" {
		h.writeError(w, r, http.StatusBadRequest, "RN-ARG-1002", "one of id or addr is required", nil)
		return
	}

	n := h.server.ClientPool().Kill(req.ID, req.Addr, false, nil)
	h.writeJSON(w, r, http.StatusOK, DebugClientsKillResponse{Killed: n})
}

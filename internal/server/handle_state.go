package server

import (
	"net/http"

	"github.com/festapp/telao/internal/game"
)

type SuccessResponse struct {
	Success bool `json:"success"`
}

// handleGameState returns the same canonical snapshot the websocket
// pushes; there is exactly one derivation path for the game view.
func handleGameState(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := engine.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// handleResetState puts the cursor back on question one. A narrow
// reposition, not a full game reset: the ledger and question order stay.
func handleResetState(engine *game.Engine, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := engine.JumpTo(r.Context(), 0); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		hub.Broadcast()
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
	}
}

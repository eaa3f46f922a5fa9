package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rickgao/delivery-planner/internal/api"
)

// writeJSON writes v with status. The status is already on the wire when
// encoding fails, so the failure can only be logged.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", "status", status, "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, code, msg string) {
	writeJSON(w, logger, status, api.ErrorResponse{Error: msg, Code: code})
}

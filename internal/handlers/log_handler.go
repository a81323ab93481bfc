package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iyunix/go-gemchat/internal/services"
)

// FrontendLogPayload defines the structure for logs coming from the browser.
type FrontendLogPayload struct {
	Level   string `json:"level"`             // e.g., "info", "error", "warn"
	Message string `json:"message"`           // The main log message
	Context any    `json:"context,omitempty"` // Optional extra data (e.g., stack trace)
}

type LogHandler struct {
	logger services.Logger
}

func NewLogHandler(logger services.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// LogFrontendEvent handles incoming log requests from the frontend.
func (h *LogHandler) LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload FrontendLogPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	kv := []interface{}{"source", "client", "context", payload.Context}
	switch strings.ToLower(payload.Level) {
	case "error":
		h.logger.Error(payload.Message, kv...)
	case "warn", "warning":
		h.logger.Warn(payload.Message, kv...)
	case "debug":
		h.logger.Debug(payload.Message, kv...)
	default:
		h.logger.Info(payload.Message, kv...)
	}

	w.WriteHeader(http.StatusNoContent)
}

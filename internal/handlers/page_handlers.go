// File: internal/handlers/page_handlers.go
package handlers

import (
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/iyunix/go-gemchat/internal/services"
)

type PageHandler struct {
	templates fs.FS
	logger    services.Logger

	once   sync.Once
	index  *template.Template
	parsed error
}

// NewPageHandler serves pages from a filesystem holding index.html.
func NewPageHandler(templates fs.FS, logger services.Logger) *PageHandler {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &PageHandler{templates: templates, logger: logger}
}

func (h *PageHandler) ShowIndexPage(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.index, h.parsed = template.ParseFS(h.templates, "index.html")
	})
	if h.parsed != nil {
		h.logger.Error("failed to parse index template", "error", h.parsed)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	addSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.Execute(w, nil); err != nil {
		h.logger.Error("template render error", "template", "index.html", "error", err)
	}
}

// Health reports liveness.
func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NotFound answers unknown routes with a JSON error like the API does.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, "Not Found", http.StatusNotFound)
}

func (h *PageHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

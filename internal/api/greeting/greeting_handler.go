package greeting

import (
	"log/slog"
	"net/http"
)

// Handler serves the fixed greeting text.
type Handler struct {
	logger  *slog.Logger
	message string
}

func NewGreetingHandler(message string, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		message: message,
	}
}

// Greet handles GET /greeting
func (h *Handler) Greet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(h.message)); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write greeting", slog.Any("error", err))
	}
}

package retrieval

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers context retrieval routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/rooms/{room_id}/context", h.BuildContext)
	r.Post("/rooms/{room_id}/context/export", h.ExportContext)
}

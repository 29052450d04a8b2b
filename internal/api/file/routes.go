package file

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers file routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/rooms/{room_id}/files", h.UploadFile)
	r.Get("/rooms/{room_id}/files", h.ListFiles)

	r.Route("/files/{file_id}", func(r chi.Router) {
		r.Get("/", h.GetFile)
		r.Delete("/", h.DeleteFile)
		r.Post("/vectorize", h.VectorizeFile)
	})
}

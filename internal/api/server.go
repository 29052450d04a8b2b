package api

import (
	"net/http"
	"time"

	"github.com/futig/studyroom-rag/internal/api/docs"
	fileapi "github.com/futig/studyroom-rag/internal/api/file"
	"github.com/futig/studyroom-rag/internal/api/middleware"
	retrievalapi "github.com/futig/studyroom-rag/internal/api/retrieval"
	"github.com/futig/studyroom-rag/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	fileHandler *fileapi.Handler,
	retrievalHandler *retrievalapi.Handler,
	requestTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)               // Recover from panics
	r.Use(chimiddleware.RequestID)               // Add request ID
	r.Use(middleware.Logger(logger))             // Log requests
	r.Use(middleware.CORS)                       // Handle CORS
	r.Use(chimiddleware.Timeout(requestTimeout)) // Synchronous OCR can take minutes

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	fileapi.RegisterRoutes(r, fileHandler)
	retrievalapi.RegisterRoutes(r, retrievalHandler)

	return r
}

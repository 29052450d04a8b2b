package middleware

import (
	"github.com/go-chi/cors"
)

// CORS allows browser clients of any origin; callers authenticate upstream
var CORS = cors.Handler(cors.Options{
	AllowedOrigins:   []string{"https://*", "http://*"},
	AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
	AllowCredentials: false,
	MaxAge:           300,
})

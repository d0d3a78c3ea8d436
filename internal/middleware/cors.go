// Package middleware provides the HTTP middleware of the Travel Buddy API:
// bearer identity, CORS, request body limits and request logging.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler allows browser clients served from allowedOrigins to call the
// API. Entries are full origins without a trailing slash. Clients send the
// bearer token in Authorization and may read the WWW-Authenticate challenge.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"WWW-Authenticate"},
		MaxAge:         600,
	})
	return c.Handler
}

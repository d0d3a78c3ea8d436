package middleware

import (
	"fmt"
	"net/http"
)

// NewMaxBodySizeHandler caps request bodies at limit bytes. A request whose
// Content-Length already exceeds the limit gets a 413 error body without
// reaching next. Otherwise the body is wrapped in http.MaxBytesReader and the
// decoding handler reports the overflow.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	msg := fmt.Sprintf("request body exceeds %d bytes", limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", msg)
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// File: internal/middleware/recovery.go
package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/iyunix/go-chatstore/internal/dtos"
	"github.com/iyunix/go-chatstore/internal/logging"
)

// RecoverPanic turns a handler panic into a logged 500 JSON response.
func RecoverPanic(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"request_id", RequestIDFromContext(r.Context()),
						"stack", string(debug.Stack()))

					w.Header().Set("Connection", "close")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(dtos.ErrorResponse{
						Code:   dtos.CodeInternal,
						Detail: "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

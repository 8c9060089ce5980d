package transport

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/xsearch/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// answers with a 500 JSON error. The server continues to accept new
// requests after a panic is recovered.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic recovered", "request_id", RequestIDFromContext(r.Context()), "panic", rec)
				WriteError(w, http.StatusInternalServerError, api.NewInternalError("internal server error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

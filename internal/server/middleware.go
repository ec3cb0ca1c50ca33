package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	applog "larder/internal/log"
)

const requestIDHeader = "X-Request-Id"

// requestID tags every request with an identifier so log lines from one
// request can be correlated. An identifier supplied by the client is kept;
// otherwise a fresh one is generated. The id rides along in the request
// context, so downstream log calls carry it without passing it explicitly.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(applog.WithRequestID(r.Context(), id))
		applog.Debug(r.Context(), "request received",
			"method", r.Method,
			"path", r.URL.Path,
		)
		next.ServeHTTP(w, r)
	})
}

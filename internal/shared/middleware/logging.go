package middleware

import (
	"log"
	"net/http"
	"time"
)

// statusRecorder captures the response status code for the request log.
// Handlers that never call WriteHeader are logged as 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status != 0 {
		return
	}

	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Logging writes one line per request with method, path, status and
// elapsed time. Query strings are left out so donor search parameters
// never end up in the logs.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, status, time.Since(start).Round(time.Microsecond))
	})
}

package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/jonny/pdm-service/pkg/apierror"
)

// DefaultBodyLimit caps request bodies when no limit is configured. Report
// requests carry base64 charts, so this is generous.
const DefaultBodyLimit = 10 << 20

// BodyReader buffers the request body up to limit bytes so handlers see a
// fully read, replayable body. Larger bodies are rejected with 413.
func BodyReader(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
			if err != nil {
				apierror.Write(w, apierror.BadRequest("failed to read request body"))
				return
			}
			r.Body.Close()
			if int64(len(body)) > limit {
				apierror.Write(w, apierror.New(http.StatusRequestEntityTooLarge, "request body too large"))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

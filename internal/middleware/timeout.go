package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout bounds every request, including slow upload bodies. When the
// deadline passes before the handler finishes, the client gets a 503
// unless a response is already underway.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			done := make(chan struct{})
			gw := &guardedWriter{ResponseWriter: w}

			go func() {
				next.ServeHTTP(gw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				gw.mu.Lock()
				defer gw.mu.Unlock()
				if !gw.wroteHeader {
					w.Header().Set("Content-Type", "text/plain; charset=utf-8")
					w.WriteHeader(http.StatusServiceUnavailable)
					_, _ = w.Write([]byte("Request timeout"))
				}
			}
		})
	}
}

// guardedWriter records whether a response has started so the timeout
// path never writes a second header.
type guardedWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	wroteHeader bool
}

func (gw *guardedWriter) WriteHeader(code int) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if !gw.wroteHeader {
		gw.wroteHeader = true
		gw.ResponseWriter.WriteHeader(code)
	}
}

func (gw *guardedWriter) Write(b []byte) (int, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if !gw.wroteHeader {
		gw.wroteHeader = true
		gw.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return gw.ResponseWriter.Write(b)
}

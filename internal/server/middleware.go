package server

import (
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cchalm/relaychat/internal/relay"
	"github.com/cchalm/relaychat/internal/telemetry"
)

// Middleware wraps a handler
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares so that they run in the order given
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// CORSConfig controls cross-origin access
type CORSConfig struct {
	// AllowedOrigins lists permitted origins. Empty means any origin, reflected back to the caller
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// DefaultCORSConfig allows any origin to make GET and POST requests with a Content-Type header
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}
}

func (c CORSConfig) isOriginAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// CORSMiddleware sets Access-Control-* headers and answers preflight requests
func CORSMiddleware(config CORSConfig) Middleware {
	methods := strings.Join(config.AllowedMethods, ",")
	headers := strings.Join(config.AllowedHeaders, ",")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")

			if origin != "" && config.isOriginAllowed(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				if config.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

const (
	requestIDHeader = "X-Request-ID"
	// sessionIDHeader is sent by the terminal client to group the exchanges of one chat session
	sessionIDHeader = "X-Session-ID"
)

// RequestIDMiddleware assigns every request an ID, exposes it in the response headers and stores it in the request
// context for logging
func RequestIDMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := telemetry.NewRequestID()
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(telemetry.WithRequestID(r.Context(), id)))
		})
	}
}

func requestIDOf(r *http.Request) string {
	return telemetry.RequestID(r.Context())
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.statusCode = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wroteHeader {
		sr.WriteHeader(http.StatusOK)
	}
	return sr.ResponseWriter.Write(b)
}

// LoggingMiddleware logs method, path, status and duration of every request
func LoggingMiddleware(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(recorder, r)

			session := r.Header.Get(sessionIDHeader)
			if session == "" {
				session = "-"
			}
			logger.Printf("[%s] %s %s | %d | %.3fs | session %s",
				requestIDOf(r),
				r.Method,
				r.URL.Path,
				recorder.statusCode,
				time.Since(start).Seconds(),
				session,
			)
		})
	}
}

// RecoveryMiddleware turns a panicking handler into a generic 500 response so the server keeps serving
func RecoveryMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Printf("[%s] Recovered from panic in %s %s: %v\n%s",
						requestIDOf(r), r.Method, r.URL.Path, err, debug.Stack())
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: relay.FailedToGenerateReply})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

package api

import (
	"net/http"
	"strings"
	"time"
	"transport-ops-service/internal/platform/logger"
	"transport-ops-service/internal/platform/obs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// statusWriter captures the final HTTP status code and number of bytes written.
// subject is filled in by authMiddleware once a token is accepted.
type statusWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	subject string
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware logs end-to-end request duration and response size.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		logger.Info("request",
			"req_id", obs.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", sw.status,
			"bytes", sw.bytes,
			"dur_ms", time.Since(start).Milliseconds(),
			"subject", sw.subject,
		)
	})
}

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware propagates a caller-supplied request id or mints one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(obs.WithRequestID(r.Context(), id)))
	})
}

// authMiddleware verifies HS256 bearer tokens issued by the platform and
// exposes their subject through obs.Subject. The health check stays public.
func authMiddleware(secret []byte, next http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeUnauthorized(w)
			return
		}

		token, err := parser.Parse(strings.TrimSpace(raw), func(*jwt.Token) (any, error) { return secret, nil })
		if err != nil || !token.Valid {
			logger.Debug("rejected token", "req_id", obs.RequestID(r.Context()), "err", err)
			writeUnauthorized(w)
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			writeUnauthorized(w)
			return
		}

		if sw, ok := w.(*statusWriter); ok {
			sw.subject = sub
		}
		next.ServeHTTP(w, r.WithContext(obs.WithSubject(r.Context(), sub)))
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="transport-ops"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}

package server

import (
	"log/slog"
	"mime"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/jameshartig/sungrowmon/pkg/log"
)

const requestIDHeader = "X-Request-Id"

func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME-sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// State can change on every call
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every request with an id, echoed in the response
// and attached to the request logger.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := log.WithAttrs(r.Context(), slog.String("requestID", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// allowedOrigins are the origins a browser reports for pages served by this
// server. Loopback aliases of the listen port are included.
func (s *Server) allowedOrigins() map[string]bool {
	origins := map[string]bool{s.URL(): true}
	if _, port, err := net.SplitHostPort(s.listenAddr); err == nil {
		for _, host := range []string{"localhost", "127.0.0.1", "::1"} {
			origins["http://"+net.JoinHostPort(host, port)] = true
		}
	}
	return origins
}

// sameOriginMiddleware rejects cross-site requests. Requests with an Origin
// other than the server's own are refused, and every POST must be JSON so a
// foreign page cannot send one without a CORS preflight.
func (s *Server) sameOriginMiddleware(next http.Handler) http.Handler {
	origins := s.allowedOrigins()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && !origins[origin] {
			log.Ctx(r.Context()).WarnContext(r.Context(), "rejecting cross-origin request", slog.String("origin", origin))
			writeJSONError(w, "cross-origin requests are not allowed", http.StatusForbidden)
			return
		}
		if r.Method == http.MethodPost {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				writeJSONError(w, "content type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

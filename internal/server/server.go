// Package server exposes the marketplace HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sakanka/internal/app"
	"sakanka/internal/metrics"
	"sakanka/internal/ratelimit"
	"sakanka/internal/util"
	"sakanka/pkg/ai"
	"sakanka/pkg/auth"
	"sakanka/pkg/domain"
	"sakanka/pkg/store"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	Listings    *app.Listings
	Extractor   *app.Extractor
	Assistant   *app.AssistantChat
	Transcriber ai.Transcriber
	Synthesizer ai.SpeechSynthesizer

	Store    store.Store
	Sessions store.SessionStore
	Tokens   *store.JWTTokenManager
	OTP      *auth.OTPStore
	Notifier app.Notifier

	Metrics      *metrics.Metrics
	Registry     *prometheus.Registry
	VoiceLimiter *ratelimit.FixedWindowLimiter
	OTPLimiter   *ratelimit.FixedWindowLimiter

	MaxAudioBytes  int64
	MaxUploadBytes int64
}

// Server hosts every endpoint of the marketplace API.
type Server struct {
	listings    *app.Listings
	extractor   *app.Extractor
	assistant   *app.AssistantChat
	transcriber ai.Transcriber
	synthesizer ai.SpeechSynthesizer

	store    store.Store
	sessions store.SessionStore
	tokens   *store.JWTTokenManager
	otp      *auth.OTPStore
	notifier app.Notifier

	metrics      *metrics.Metrics
	registry     *prometheus.Registry
	voiceLimiter *ratelimit.FixedWindowLimiter
	otpLimiter   *ratelimit.FixedWindowLimiter

	mux            *http.ServeMux
	maxAudioBytes  int64
	maxUploadBytes int64
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	maxAudioBytes := cfg.MaxAudioBytes
	if maxAudioBytes <= 0 {
		maxAudioBytes = 10 * 1024 * 1024
	}
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 * 1024 * 1024
	}
	s := &Server{
		listings:       cfg.Listings,
		extractor:      cfg.Extractor,
		assistant:      cfg.Assistant,
		transcriber:    cfg.Transcriber,
		synthesizer:    cfg.Synthesizer,
		store:          cfg.Store,
		sessions:       cfg.Sessions,
		tokens:         cfg.Tokens,
		otp:            cfg.OTP,
		notifier:       cfg.Notifier,
		metrics:        cfg.Metrics,
		registry:       cfg.Registry,
		voiceLimiter:   cfg.VoiceLimiter,
		otpLimiter:     cfg.OTPLimiter,
		mux:            http.NewServeMux(),
		maxAudioBytes:  maxAudioBytes,
		maxUploadBytes: maxUploadBytes,
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped in the middleware chain.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	if s.metrics != nil {
		h = s.withHTTPMetrics(h)
	}
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(h))))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(rec.status), time.Since(started).Seconds())
	})
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	if s.registry != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	} else {
		s.mux.Handle("/metrics", promhttp.Handler())
	}

	// voice pipeline
	s.mux.HandleFunc("/api/voice/transcribe", s.handleTranscribe)
	s.mux.HandleFunc("/api/voice/extract", s.handleExtract)
	s.mux.HandleFunc("/api/voice/assistant", s.handleAssistant)
	s.mux.HandleFunc("/api/voice/speech", s.handleSpeech)

	// marketplace
	s.mux.HandleFunc("/api/products", s.handleProducts)
	s.mux.HandleFunc("/api/products/search", s.handleSearch)
	s.mux.Handle("/api/products/", s.withUser(s.handleProductByID))

	// accounts
	s.mux.HandleFunc("/api/auth/otp", s.handleSendOTP)
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.Handle("/api/auth/logout", s.withUser(s.handleLogout))
	s.mux.Handle("/api/users/me", s.withUser(s.handleMe))

	// telco gateway
	s.mux.HandleFunc("/api/ussd", s.handleUSSD)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userHandler func(http.ResponseWriter, *http.Request, domain.User)

// withUser authenticates the bearer token: the JWT must verify and the
// session must still be live (logout revokes it ahead of expiry).
func (s *Server) withUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticate(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authenticate(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.User{}, false
	}
	userID, live, err := s.sessions.GetUserIDByToken(token)
	if err != nil || !live || userID != claims.UserID {
		return domain.User{}, false
	}
	user, found, err := s.store.GetUserByID(claims.UserID)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCode(status),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "REQUEST_INVALID"
	case http.StatusUnauthorized:
		return "AUTH_INVALID_TOKEN"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusPaymentRequired:
		return "QUOTA_EXHAUSTED"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}

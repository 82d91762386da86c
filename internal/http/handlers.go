package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/yourname/shortlink/internal/auth"
	"github.com/yourname/shortlink/internal/config"
	"github.com/yourname/shortlink/internal/core"
	"github.com/yourname/shortlink/internal/metrics"
	"github.com/yourname/shortlink/internal/store"
)

type Router struct {
	cfg      config.Config
	links    *core.Service
	accounts *auth.Service
	limiter  *createLimiter
}

func NewRouter(cfg config.Config, links *core.Service, accounts *auth.Service) http.Handler {
	r := chi.NewRouter()
	// Logging middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", dur).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	api := &Router{
		cfg:      cfg,
		links:    links,
		accounts: accounts,
		limiter:  newCreateLimiter(cfg.CreateRateRPS, cfg.CreateRateBurst),
	}

	r.MethodFunc(http.MethodGet, "/healthz", api.handleHealth)
	r.MethodFunc(http.MethodGet, "/readyz", api.handleReady)

	// Metrics
	r.MethodFunc(http.MethodGet, "/metrics", metrics.Handler)

	r.MethodFunc(http.MethodPost, "/url", api.handleCreate)
	r.MethodFunc(http.MethodGet, "/analytics/{shortId}", api.handleAnalytics)
	r.MethodFunc(http.MethodPost, "/signup", api.handleSignup)
	r.MethodFunc(http.MethodPost, "/login", api.handleLogin)

	// Redirect path
	r.MethodFunc(http.MethodGet, "/{shortId}", api.handleRedirect)

	return r
}

type createReq struct {
	RedirectURL string `json:"redirectURL"`
}

type createResp struct {
	ShortID  string `json:"shortId"`
	ShortURL string `json:"short_url,omitempty"`
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type successResp struct {
	Success bool `json:"success"`
}

func (rt *Router) handleCreate(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !rt.limiter.Allow(ip) {
		metrics.RateLimited.Inc()
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	shortID, err := rt.links.CreateLink(r.Context(), req.RedirectURL)
	if err != nil {
		if errors.Is(err, core.ErrInvalidDestination) {
			http.Error(w, "invalid redirectURL", http.StatusBadRequest)
			return
		}
		// CreationFailed or store outage: log the detail, answer generically.
		hlog.FromRequest(r).Error().Err(err).Msg("create link")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := createResp{ShortID: shortID}
	if rt.cfg.BaseURL != "" {
		resp.ShortURL = strings.TrimRight(rt.cfg.BaseURL, "/") + "/" + shortID
	}
	writeJSON(w, resp, http.StatusOK)
	metrics.LinksCreated.Inc()
}

func (rt *Router) handleRedirect(w http.ResponseWriter, r *http.Request) {
	shortID := chi.URLParam(r, "shortId")
	destination, err := rt.links.Resolve(r.Context(), shortID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RedirectMisses.Inc()
			http.NotFound(w, r)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("short_id", shortID).Msg("resolve")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.Redirects.Inc()
	// The visit is already durable; safe to hand out the redirect.
	http.Redirect(w, r, destination, http.StatusFound)
}

func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	shortID := chi.URLParam(r, "shortId")
	n, err := rt.links.ClickCount(r.Context(), shortID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("short_id", shortID).Msg("click count")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int64{"totalClicks": n}, http.StatusOK)
}

func (rt *Router) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	err := rt.accounts.Signup(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, successResp{Success: true}, http.StatusOK)
		metrics.Signups.Inc()
	case errors.Is(err, auth.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrAlreadyExists):
		writeJSON(w, successResp{Success: false}, http.StatusConflict)
	default:
		// Never echo store detail; the email is fine to log, the password never is.
		hlog.FromRequest(r).Error().Err(err).Msg("signup")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	ok, err := rt.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("login")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if ok {
		metrics.Logins.WithLabelValues("success").Inc()
	} else {
		metrics.Logins.WithLabelValues("failure").Inc()
	}
	writeJSON(w, successResp{Success: ok}, http.StatusOK)
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (rt *Router) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	// Try X-Forwarded-For or Real-IP first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if rip := r.Header.Get("X-Real-Ip"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LinksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "links_created_total",
		Help: "Total links created.",
	})
	Redirects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redirect_requests_total",
		Help: "Total redirects served.",
	})
	RedirectMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redirect_misses_total",
		Help: "Redirect requests for unknown identifiers.",
	})
	IDCollisions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "id_collisions_total",
		Help: "Identifier collisions that forced a regenerate.",
	})
	Signups = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signup_requests_total",
		Help: "Total signup requests accepted.",
	})
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)

func init() {
	prometheus.MustRegister(LinksCreated, Redirects, RedirectMisses, IDCollisions, Signups, Logins, RateLimited)
}

func Handler(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	defaultCORSHeaders = []string{"Accept", "Content-Type", "X-Correlation-ID", "X-User-Email"}
)

// CORSConfig configures the CORS middleware. Zero values fall back to the
// defaults used by DefaultCORSConfig.
type CORSConfig struct {
	// AllowedOrigins lists exact origins. "*" allows any origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge           int
	AllowCredentials bool
	// Environment "development" answers every origin with a wildcard.
	Environment string
}

// DefaultCORSConfig is an open configuration for local development.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: slices.Clone(defaultCORSMethods),
		AllowedHeaders: slices.Clone(defaultCORSHeaders),
		ExposedHeaders: []string{"X-Correlation-ID", "X-User-Email"},
		MaxAge:         3600,
		Environment:    "development",
	}
}

// CORS sets the cross-origin headers for cfg and answers preflight requests
// with 204. Origins outside the allowed set get no Allow-Origin header.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = defaultCORSMethods
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = defaultCORSHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 3600
	}

	wildcard := cfg.Environment == "development" || slices.Contains(cfg.AllowedOrigins, "*")
	static := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(cfg.AllowedMethods, ", "),
		"Access-Control-Allow-Headers": strings.Join(cfg.AllowedHeaders, ", "),
		"Access-Control-Max-Age":       strconv.Itoa(cfg.MaxAge),
	}
	if len(cfg.ExposedHeaders) > 0 {
		static["Access-Control-Expose-Headers"] = strings.Join(cfg.ExposedHeaders, ", ")
	}
	if cfg.AllowCredentials {
		static["Access-Control-Allow-Credentials"] = "true"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			switch origin := r.Header.Get("Origin"); {
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(cfg.AllowedOrigins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			for k, v := range static {
				h.Set(k, v)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

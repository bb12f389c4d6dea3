package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls cross-origin access for the SPA. The storefront is
// consumed by a browser app served from a different origin, so every API
// route runs behind this middleware.
type CORSConfig struct {
	// AllowedOrigins lists the SPA origins. A "*" entry allows any origin,
	// which is only honored in development.
	AllowedOrigins []string

	// AllowedMethods defaults to the storefront's method set when empty.
	AllowedMethods []string

	// AllowedHeaders defaults to the headers the SPA actually sends when
	// empty, including the gateway identity header.
	AllowedHeaders []string

	// ExposedHeaders lists response headers the browser may read.
	ExposedHeaders []string

	// MaxAge is the preflight cache window in seconds. Zero means 3600.
	MaxAge int

	// AllowCredentials enables cookie and Authorization forwarding.
	AllowCredentials bool

	// Environment gates wildcard origins. Only "development" (or an
	// explicit "*" entry) turns the wildcard on.
	Environment string
}

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID", "X-User-ID"}
)

// DefaultCORSConfig is the development setup: wildcard origin, the
// storefront's standard method and header sets, and the identity and
// correlation headers exposed to the SPA.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: defaultCORSMethods,
		AllowedHeaders: defaultCORSHeaders,
		ExposedHeaders: []string{"X-Correlation-ID", "X-User-ID"},
		MaxAge:         3600,
		Environment:    "development",
	}
}

// corsPolicy is the precomputed form of a CORSConfig: joined header values
// and an origin lookup set, built once at router construction.
type corsPolicy struct {
	wildcard    bool
	origins     map[string]struct{}
	methods     string
	headers     string
	exposed     string
	maxAge      string
	credentials bool
}

func buildPolicy(cfg CORSConfig) corsPolicy {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = defaultCORSMethods
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = defaultCORSHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 3600
	}

	p := corsPolicy{
		wildcard:    cfg.Environment == "development",
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		exposed:     strings.Join(cfg.ExposedHeaders, ", "),
		maxAge:      strconv.Itoa(cfg.MaxAge),
		credentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			p.wildcard = true
		}
		p.origins[o] = struct{}{}
	}
	return p
}

// CORS applies the policy derived from cfg. Preflight OPTIONS requests are
// answered with 204 and never reach the handlers.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	policy := buildPolicy(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case policy.wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "":
				if _, ok := policy.origins[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", policy.methods)
			w.Header().Set("Access-Control-Allow-Headers", policy.headers)
			if policy.exposed != "" {
				w.Header().Set("Access-Control-Expose-Headers", policy.exposed)
			}
			w.Header().Set("Access-Control-Max-Age", policy.maxAge)
			if policy.credentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

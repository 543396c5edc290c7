// README: HTTP server assembly; security headers and per-IP rate limiting around the router.
package http

import (
	"net/http"

	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"petlove/internal/config"
)

func NewServer(cfg config.HTTPConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      Harden(cfg, router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// Harden wraps the router with security headers and, when RateLimit is
// positive, a per-IP request limit.
func Harden(cfg config.HTTPConfig, next http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		AllowedHosts:          cfg.AllowedHosts,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           cfg.Production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !cfg.Production,
	})
	h := secureMiddleware.Handler(next)
	if cfg.RateLimit <= 0 {
		return h
	}
	limiter := httprate.Limit(cfg.RateLimit, cfg.RateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests"}`))
		}),
	)
	return limiter(h)
}

package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

var securityHeaders = map[string]string{
	"X-Content-Type-Options":            "nosniff",
	"X-Frame-Options":                   "SAMEORIGIN",
	"Referrer-Policy":                   "no-referrer",
	"Strict-Transport-Security":         "max-age=15552000; includeSubDomains",
	"Content-Security-Policy":           "default-src 'self'; base-uri 'self'; frame-ancestors 'self'; img-src 'self' data: https:; object-src 'none'",
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cross-Origin-Resource-Policy":      "same-origin",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Permitted-Cross-Domain-Policies": "none",
	"X-XSS-Protection":                  "0",
}

// SecurityHeaders aplica cabeçalhos de proteção em todas as respostas.
// Com logHeaders, registra em debug os cabeçalhos enviados.
func SecurityHeaders(logHeaders bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range securityHeaders {
				h.Set(k, v)
			}
			h.Del("X-Powered-By")

			if logHeaders {
				log.Debug().Str("path", r.URL.Path).Interface("headers", securityHeaders).Msg("security headers aplicados")
			}

			next.ServeHTTP(w, r)
		})
	}
}

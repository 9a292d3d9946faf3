package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// SameOrigin recusa métodos inseguros vindos de origens não autorizadas.
// Requisições sem Origin passam (clientes nativos e ferramentas).
func SameOrigin(allowedOrigins []string, exempt ...string) func(http.Handler) http.Handler {
	isAllowed := originMatcher(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) || isExempt(r.URL.Path, exempt) {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" || isAllowed(origin) || sameHost(origin, r.Host) {
				next.ServeHTTP(w, r)
				return
			}

			writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Origem não permitida")
		})
	}
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func isExempt(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

package middleware

import (
	"crypto/sha256"
	"net/http"
	"net/url"

	"github.com/gorilla/csrf"
)

// CSRFHeader é o cabeçalho onde o token é entregue e esperado.
const CSRFHeader = "X-CSRF-Token"

// CSRFConfig liga geração e validação de forma independente.
type CSRFConfig struct {
	Secret         string
	Generate       bool
	Validate       bool
	Secure         bool
	TrustedOrigins []string
	Exempt         []string
}

// CSRF usa gorilla/csrf com cookie assinado. Em requisições seguras o token
// vai em X-CSRF-Token quando Generate; métodos inseguros são validados
// quando Validate, exceto nas rotas isentas.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	if !cfg.Generate && !cfg.Validate {
		return func(next http.Handler) http.Handler { return next }
	}

	key := sha256.Sum256([]byte(cfg.Secret))
	opts := []csrf.Option{
		csrf.Secure(cfg.Secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.CookieName("_csrf"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Token CSRF inválido")
		})),
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(hosts(cfg.TrustedOrigins)))
	}
	protect := csrf.Protect(key[:], opts...)

	return func(next http.Handler) http.Handler {
		emit := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Generate && isSafeMethod(r.Method) {
				w.Header().Set(CSRFHeader, csrf.Token(r))
			}
			next.ServeHTTP(w, r)
		})
		protected := protect(emit)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			if !cfg.Validate || isExempt(r.URL.Path, cfg.Exempt) {
				r = csrf.UnsafeSkipCheck(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func hosts(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
		}
	}
	return out
}

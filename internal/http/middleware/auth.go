package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/solidarios/api/internal/auth"
	"github.com/solidarios/api/internal/repo"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyEmail   contextKey = "email"
	ContextKeyRole    contextKey = "role"
)

// Auth valida JWT de acesso e injeta claims no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, r, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			role := repo.Role(claims.Role)
			if _, err := uuid.Parse(claims.Subject); err != nil || !role.Valid() {
				writeError(w, r, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims.Subject, claims.Email, role)))
		})
	}
}

// WithClaims grava subject, email e papel no contexto.
func WithClaims(ctx context.Context, subject, email string, role repo.Role) context.Context {
	ctx = context.WithValue(ctx, ContextKeySubject, subject)
	ctx = context.WithValue(ctx, ContextKeyEmail, email)
	return context.WithValue(ctx, ContextKeyRole, role)
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetRole recupera o papel do contexto.
func GetRole(ctx context.Context) repo.Role {
	val, _ := ctx.Value(ContextKeyRole).(repo.Role)
	return val
}

// GetActor monta o ator autenticado a partir do contexto.
func GetActor(ctx context.Context) (repo.Actor, bool) {
	id, err := uuid.Parse(GetSubject(ctx))
	if err != nil {
		return repo.Actor{}, false
	}
	return repo.Actor{ID: id, Role: GetRole(ctx)}, true
}

// RequireRoles garante que o usuário possua um dos papéis informados.
func RequireRoles(roles ...repo.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetRole(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Você não tem permissão para acessar este recurso.")
		})
	}
}

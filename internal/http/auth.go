package http

import (
	"net/http"
	"time"

	"github.com/solidarios/api/internal/service"
)

const refreshCookieName = "refresh_token"

// Register cadastra doador ou beneficiário e inicia sessão.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload service.RegisterInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.auth.Register(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeSession(w, http.StatusCreated, "Usuário registrado com sucesso", result)
}

// Login autentica por email e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload service.LoginInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeSession(w, http.StatusOK, "Login realizado com sucesso", result)
}

// Refresh rotaciona o refresh token vindo do corpo ou do cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := h.refreshFromRequest(w, r)
	if token == "" {
		WriteError(w, r, http.StatusUnauthorized, "AUTH", "refresh ausente", nil)
		return
	}

	result, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		h.clearRefreshCookie(w)
		writeServiceError(w, r, err)
		return
	}

	h.writeSession(w, http.StatusOK, "Sessão renovada", result)
}

// Logout revoga o refresh token atual.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.refreshFromRequest(w, r); token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	h.clearRefreshCookie(w)
	WriteJSON(w, http.StatusOK, "Logout realizado com sucesso", map[string]string{"status": "logged_out"})
}

// Profile retorna o usuário autenticado.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	user, err := h.auth.Profile(r.Context(), actor.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, "Perfil do usuário", user)
}

func (h *Handler) writeSession(w http.ResponseWriter, status int, message string, result *service.AuthResult) {
	h.setRefreshCookie(w, result.RefreshToken, result.RefreshExpiry)
	WriteJSON(w, status, message, result)
}

// refreshFromRequest prioriza o corpo (app mobile) e cai para o cookie assinado.
func (h *Handler) refreshFromRequest(w http.ResponseWriter, r *http.Request) string {
	var payload struct {
		RefreshToken string `json:"refreshToken"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(w, r, &payload); err == nil && payload.RefreshToken != "" {
			return payload.RefreshToken
		}
	}

	c, err := r.Cookie(refreshCookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	var token string
	if err := h.cookies.Decode(refreshCookieName, c.Value, &token); err != nil {
		return ""
	}
	return token
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	encoded, err := h.cookies.Encode(refreshCookieName, token)
	if err != nil {
		return
	}
	http.SetCookie(w, h.refreshCookie(encoded, expires, 0))
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, h.refreshCookie("", time.Time{}, -1))
}

func (h *Handler) refreshCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/auth",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !h.devCookies,
		SameSite: sameSite,
	}
}

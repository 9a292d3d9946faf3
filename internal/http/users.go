package http

import (
	"net/http"
	"strings"

	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/service"
	"github.com/solidarios/api/internal/util"
)

// ListUsers pagina usuários, com filtro opcional por papel.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	opts, err := util.ParsePageOptions(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var role *repo.Role
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		v := repo.Role(strings.ToUpper(raw))
		role = &v
	}

	page, err := h.users.List(r.Context(), role, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Usuários encontrados", page)
}

// GetUser busca usuário; staff ou o próprio.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.users.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Usuário encontrado", user)
}

// CreateUser cadastra usuário com qualquer papel; somente ADMIN.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload service.CreateUserInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, "Usuário criado com sucesso", user)
}

// UpdateUser altera cadastro; ADMIN ou o próprio usuário.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var payload service.UpdateUserInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), actor, id, payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Usuário atualizado com sucesso", user)
}

// DeleteUser remove usuário; somente ADMIN.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.users.Remove(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Usuário removido com sucesso", nil)
}

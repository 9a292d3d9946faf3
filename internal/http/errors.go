package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/service"
	"github.com/solidarios/api/internal/storage"
	"github.com/solidarios/api/internal/util"
)

// writeServiceError é o único ponto de tradução de erros de domínio para HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *util.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteError(w, r, http.StatusBadRequest, "VALIDATION", "Dados inválidos", verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrRefreshInvalid),
		errors.Is(err, service.ErrAccountDisabled):
		WriteError(w, r, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, repo.ErrForbidden):
		WriteError(w, r, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, repo.ErrConflict):
		WriteError(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, storage.ErrNotConfigured):
		WriteError(w, r, http.StatusServiceUnavailable, "INTERNAL", "armazenamento indisponível", nil)
	default:
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("erro não tratado")
		WriteError(w, r, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

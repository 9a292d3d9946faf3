package service

import (
	"github.com/google/uuid"

	"github.com/solidarios/api/internal/repo"
)

// RequireSelfOrStaff permite o próprio usuário ou ADMIN/FUNCIONARIO.
func RequireSelfOrStaff(actor repo.Actor, target uuid.UUID) error {
	if actor.Role.IsStaff() || actor.ID == target {
		return nil
	}
	return repo.Forbidden("Você não tem permissão para acessar dados de outro usuário.")
}

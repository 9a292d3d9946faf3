package repo

import (
	"time"

	"github.com/google/uuid"
)

// Role define o papel de um usuário.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleFuncionario  Role = "FUNCIONARIO"
	RoleDoador       Role = "DOADOR"
	RoleBeneficiario Role = "BENEFICIARIO"
)

// Valid indica papel conhecido.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFuncionario, RoleDoador, RoleBeneficiario:
		return true
	}
	return false
}

// IsStaff cobre ADMIN e FUNCIONARIO.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleFuncionario
}

// User representa qualquer pessoa cadastrada.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	Phone        *string   `json:"phone"`
	Address      *string   `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Actor é quem executa a operação, extraído do token.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Is verifica se o ator possui algum dos papéis.
func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// RefreshToken modela tabela de refresh tokens.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	IsRevoked bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserFilter restringe a listagem de usuários.
type UserFilter struct {
	Role *Role
}

// CreateUserParams agrupa colunas de inserção.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        *string
	Address      *string
}

// UpdateUserParams contém apenas os campos alterados.
type UpdateUserParams struct {
	ID           uuid.UUID
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
	IsActive     *bool
	Phone        *string
	Address      *string
}

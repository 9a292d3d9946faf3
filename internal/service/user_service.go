package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/solidarios/api/internal/auth"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

type userRepository interface {
	CreateUser(ctx context.Context, p repo.CreateUserParams) (*repo.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
	ListUsers(ctx context.Context, filter repo.UserFilter, opts util.PageOptions) ([]repo.User, int, error)
	UpdateUser(ctx context.Context, p repo.UpdateUserParams) (*repo.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// UserService administra cadastros de usuários.
type UserService struct {
	repo userRepository
}

// NewUserService cria novo serviço.
func NewUserService(r *repo.Queries) *UserService {
	return &UserService{repo: r}
}

// CreateUserInput é usado pelo ADMIN e aceita qualquer papel.
type CreateUserInput struct {
	Name     string    `json:"name" validate:"required,max=100"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=6"`
	Role     repo.Role `json:"role" validate:"omitempty,oneof=ADMIN FUNCIONARIO DOADOR BENEFICIARIO"`
	Phone    string    `json:"phone" validate:"required,phonebr"`
	Address  string    `json:"address" validate:"required"`
}

// UpdateUserInput contém somente os campos enviados.
type UpdateUserInput struct {
	Name     *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string    `json:"email" validate:"omitempty,email"`
	Password *string    `json:"password" validate:"omitempty,min=6"`
	Role     *repo.Role `json:"role" validate:"omitempty,oneof=ADMIN FUNCIONARIO DOADOR BENEFICIARIO"`
	IsActive *bool      `json:"isActive"`
	Phone    *string    `json:"phone" validate:"omitempty,phonebr"`
	Address  *string    `json:"address"`
}

// List devolve usuários paginados, opcionalmente por papel.
func (s *UserService) List(ctx context.Context, role *repo.Role, opts util.PageOptions) (util.Page[repo.User], error) {
	if role != nil && !role.Valid() {
		return util.Page[repo.User]{}, util.NewValidationError("role", "papel inválido")
	}
	users, total, err := s.repo.ListUsers(ctx, repo.UserFilter{Role: role}, opts)
	if err != nil {
		return util.Page[repo.User]{}, err
	}
	return util.NewPage(users, opts, total), nil
}

// Get busca usuário; não staff só enxerga a si mesmo.
func (s *UserService) Get(ctx context.Context, actor repo.Actor, id uuid.UUID) (*repo.User, error) {
	if err := RequireSelfOrStaff(actor, id); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Create cadastra usuário com qualquer papel.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*repo.User, error) {
	in.Name = util.SanitizeText(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = util.SanitizeText(in.Address)
	if in.Role == "" {
		in.Role = repo.RoleDoador
	}
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	hash, err := auth.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, repo.CreateUserParams{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        &in.Phone,
		Address:      &in.Address,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("usuário criado")
	return user, nil
}

// Update altera dados; o próprio usuário não muda papel nem status.
func (s *UserService) Update(ctx context.Context, actor repo.Actor, id uuid.UUID, in UpdateUserInput) (*repo.User, error) {
	isAdmin := actor.Is(repo.RoleAdmin)
	if !isAdmin && actor.ID != id {
		return nil, repo.Forbidden("Você não tem permissão para atualizar outro usuário.")
	}
	if !isAdmin && (in.Role != nil || in.IsActive != nil) {
		return nil, repo.Forbidden("Você não pode alterar papel ou status da própria conta.")
	}

	if in.Name != nil {
		clean := util.SanitizeText(*in.Name)
		in.Name = &clean
	}
	if in.Email != nil {
		clean := strings.TrimSpace(*in.Email)
		in.Email = &clean
	}
	in.Address = util.SanitizeOptional(in.Address)
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	params := repo.UpdateUserParams{
		ID:       id,
		Name:     in.Name,
		Email:    in.Email,
		Role:     in.Role,
		IsActive: in.IsActive,
		Phone:    in.Phone,
		Address:  in.Address,
	}
	// senha vai no mesmo UPDATE: conflito de email não deixa troca parcial
	if in.Password != nil {
		hash, err := auth.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		params.PasswordHash = &hash
	}
	return s.repo.UpdateUser(ctx, params)
}

// Remove apaga o usuário.
func (s *UserService) Remove(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteUser(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.NotFound("Usuário com ID %s não encontrado", id)
	}
	return err
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*repo.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, repo.NotFound("Usuário com ID %s não encontrado", id)
	}
	return user, err
}

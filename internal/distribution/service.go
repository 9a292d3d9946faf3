package distribution

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solidarios/api/internal/item"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

type repository interface {
	Create(ctx context.Context, p CreateParams) error
	Get(ctx context.Context, id uuid.UUID) (*Distribution, error)
	List(ctx context.Context, beneficiaryID *uuid.UUID, opts util.PageOptions) ([]Distribution, int, error)
	UpdateObservations(ctx context.Context, id uuid.UUID, observations string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserLookup resolve beneficiário e funcionário.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// ItemLookup resolve o item distribuído.
type ItemLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*item.Item, error)
}

// Service aplica as regras de aprovação de distribuições.
type Service struct {
	repo   repository
	users  UserLookup
	items  ItemLookup
	logger zerolog.Logger
}

// NewService cria o serviço de distribuições.
func NewService(r *Repository, users UserLookup, items ItemLookup) *Service {
	return &Service{repo: r, users: users, items: items, logger: log.With().Str("component", "distributions").Logger()}
}

// Create aprova a entrega de um item reservado.
//
// Ordem das verificações: beneficiário, funcionário e item; o primeiro
// que falhar define o erro. O item passa a distribuido na mesma transação
// que grava a distribuição.
func (s *Service) Create(ctx context.Context, actor repo.Actor, in CreateInput) (*Distribution, error) {
	if !actor.Role.IsStaff() {
		return nil, repo.Forbidden("Você não tem permissão para criar distribuições.")
	}
	in.Observations = util.SanitizeOptional(in.Observations)
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	employeeID := actor.ID
	if in.EmployeeID != nil {
		employeeID = *in.EmployeeID
	}

	beneficiary, err := s.findUser(ctx, in.BeneficiaryID)
	if err != nil {
		return nil, err
	}
	if beneficiary.Role != repo.RoleBeneficiario {
		return nil, repo.Conflict("Usuário com ID %s não é um beneficiário.", in.BeneficiaryID)
	}

	employee, err := s.findUser(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !employee.Role.IsStaff() {
		return nil, repo.Conflict("Usuário com ID %s não é um funcionário ou admin.", employeeID)
	}

	it, err := s.items.Get(ctx, in.ItemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, repo.NotFound("Item com ID %s não encontrado", in.ItemID)
		}
		return nil, err
	}
	if it.Status != item.StatusReservado {
		return nil, repo.Conflict("Item com ID %s não está reservado para distribuição.", in.ItemID)
	}

	params := CreateParams{
		ID:            util.NewID(),
		Date:          util.Now(),
		BeneficiaryID: beneficiary.ID,
		EmployeeID:    employee.ID,
		ItemID:        it.ID,
		Observations:  in.Observations,
	}
	if err := s.repo.Create(ctx, params); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("distribution_id", params.ID.String()).
		Str("item_id", it.ID.String()).
		Str("beneficiary_id", beneficiary.ID.String()).
		Str("employee_id", employee.ID.String()).
		Msg("distribuição registrada")

	return s.Get(ctx, params.ID)
}

// Get busca uma distribuição.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Distribution, error) {
	d, err := s.repo.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound(id)
	}
	return d, err
}

// List pagina todas as distribuições por data.
func (s *Service) List(ctx context.Context, opts util.PageOptions) (util.Page[Distribution], error) {
	list, total, err := s.repo.List(ctx, nil, opts)
	if err != nil {
		return util.Page[Distribution]{}, err
	}
	return util.NewPage(list, opts, total), nil
}

// ListByBeneficiary pagina distribuições de um beneficiário; ele próprio ou staff.
func (s *Service) ListByBeneficiary(ctx context.Context, actor repo.Actor, beneficiaryID uuid.UUID, opts util.PageOptions) (util.Page[Distribution], error) {
	if !actor.Role.IsStaff() && actor.ID != beneficiaryID {
		return util.Page[Distribution]{}, repo.Forbidden("Você não tem permissão para ver distribuições de outro beneficiário.")
	}
	list, total, err := s.repo.List(ctx, &beneficiaryID, opts)
	if err != nil {
		return util.Page[Distribution]{}, err
	}
	return util.NewPage(list, opts, total), nil
}

// Update altera as observações; somente ADMIN e FUNCIONARIO.
func (s *Service) Update(ctx context.Context, actor repo.Actor, id uuid.UUID, in UpdateInput) (*Distribution, error) {
	if !actor.Role.IsStaff() {
		return nil, repo.Forbidden("Você não tem permissão para atualizar distribuições.")
	}
	in.Observations = util.SanitizeOptional(in.Observations)
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if in.Observations != nil && *in.Observations != "" {
		if err := s.repo.UpdateObservations(ctx, id, *in.Observations); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, notFound(id)
			}
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Remove apaga a distribuição; somente ADMIN.
func (s *Service) Remove(ctx context.Context, actor repo.Actor, id uuid.UUID) error {
	if !actor.Is(repo.RoleAdmin) {
		return repo.Forbidden("Você não tem permissão para remover distribuições.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(id)
		}
		return err
	}
	s.logger.Info().Str("distribution_id", id.String()).Msg("distribuição removida")
	return nil
}

func (s *Service) findUser(ctx context.Context, id uuid.UUID) (*repo.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, repo.NotFound("Usuário com ID %s não encontrado", id)
	}
	return user, err
}

func notFound(id uuid.UUID) error {
	return repo.NotFound("Distribuição com ID %s não encontrada", id)
}

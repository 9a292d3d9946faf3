package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

type repository interface {
	Create(ctx context.Context, in CreateInput) (*Entry, error)
	Get(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByItem(ctx context.Context, itemID uuid.UUID) (*Entry, error)
	List(ctx context.Context, opts util.PageOptions) ([]Entry, int, error)
	ListLowStock(ctx context.Context) ([]Entry, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service aplica regras de estoque.
type Service struct {
	repo repository
}

// NewService cria o serviço de estoque.
func NewService(r *Repository) *Service {
	return &Service{repo: r}
}

// Create registra estoque para um item.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Entry, error) {
	in.Location = util.SanitizeOptional(in.Location)
	if err := util.Validate(in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

// Get busca registro pelo ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound(id)
	}
	return e, err
}

// GetByItem busca o registro de um item.
func (s *Service) GetByItem(ctx context.Context, itemID uuid.UUID) (*Entry, error) {
	e, err := s.repo.GetByItem(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, repo.NotFound("Estoque para o item com ID %s não encontrado", itemID)
	}
	return e, err
}

// List pagina o estoque.
func (s *Service) List(ctx context.Context, opts util.PageOptions) (util.Page[Entry], error) {
	entries, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return util.Page[Entry]{}, err
	}
	return util.NewPage(entries, opts, total), nil
}

// LowStock lista registros em alerta.
func (s *Service) LowStock(ctx context.Context) ([]Entry, error) {
	return s.repo.ListLowStock(ctx)
}

// Update altera quantidade, local ou nível de alerta.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Entry, error) {
	in.Location = util.SanitizeOptional(in.Location)
	if err := util.Validate(in); err != nil {
		return nil, err
	}
	e, err := s.repo.Update(ctx, id, in)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	if e.LowStock() {
		log.Warn().Str("inventory_id", e.ID.String()).Str("item_id", e.ItemID.String()).
			Int("quantity", e.Quantity).Int("alert_level", *e.AlertLevel).Msg("estoque no nível de alerta")
	}
	return e, nil
}

// Remove apaga o registro.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound(id)
	}
	return err
}

func notFound(id uuid.UUID) error {
	return repo.NotFound("Registro de estoque com ID %s não encontrado", id)
}

package http

import (
	"context"

	"github.com/google/uuid"

	"github.com/solidarios/api/internal/category"
	"github.com/solidarios/api/internal/distribution"
	"github.com/solidarios/api/internal/inventory"
	"github.com/solidarios/api/internal/item"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/service"
	"github.com/solidarios/api/internal/util"
)

// AuthService cobre cadastro, login e sessão.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	Refresh(ctx context.Context, rawToken string) (*service.AuthResult, error)
	Logout(ctx context.Context, rawToken string) error
	Profile(ctx context.Context, subject uuid.UUID) (*repo.User, error)
}

// UserService cobre a administração de usuários.
type UserService interface {
	List(ctx context.Context, role *repo.Role, opts util.PageOptions) (util.Page[repo.User], error)
	Get(ctx context.Context, actor repo.Actor, id uuid.UUID) (*repo.User, error)
	Create(ctx context.Context, in service.CreateUserInput) (*repo.User, error)
	Update(ctx context.Context, actor repo.Actor, id uuid.UUID, in service.UpdateUserInput) (*repo.User, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// CategoryService cobre o CRUD de categorias.
type CategoryService interface {
	List(ctx context.Context) ([]category.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*category.Category, error)
	Create(ctx context.Context, in category.CreateInput) (*category.Category, error)
	Update(ctx context.Context, id uuid.UUID, in category.UpdateInput) (*category.Category, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// ItemService cobre doações, fotos e reservas.
type ItemService interface {
	Get(ctx context.Context, id uuid.UUID) (*item.Item, error)
	List(ctx context.Context, filter item.Filter, opts util.PageOptions) (util.Page[item.Item], error)
	Create(ctx context.Context, actor repo.Actor, in item.CreateInput, photos []item.Photo) (*item.Item, error)
	Update(ctx context.Context, actor repo.Actor, id uuid.UUID, in item.UpdateInput) (*item.Item, error)
	Remove(ctx context.Context, actor repo.Actor, id uuid.UUID) error
	Reserve(ctx context.Context, actor repo.Actor, id, userID uuid.UUID) (*item.Item, error)
	Release(ctx context.Context, actor repo.Actor, id uuid.UUID) (*item.Item, error)
	AddPhotos(ctx context.Context, actor repo.Actor, id uuid.UUID, photos []item.Photo) (*item.Item, error)
	RemovePhoto(ctx context.Context, actor repo.Actor, id uuid.UUID, photoURL string) (*item.Item, error)
}

// InventoryService cobre o estoque.
type InventoryService interface {
	Create(ctx context.Context, in inventory.CreateInput) (*inventory.Entry, error)
	Get(ctx context.Context, id uuid.UUID) (*inventory.Entry, error)
	GetByItem(ctx context.Context, itemID uuid.UUID) (*inventory.Entry, error)
	List(ctx context.Context, opts util.PageOptions) (util.Page[inventory.Entry], error)
	LowStock(ctx context.Context) ([]inventory.Entry, error)
	Update(ctx context.Context, id uuid.UUID, in inventory.UpdateInput) (*inventory.Entry, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// DistributionService cobre a aprovação de entregas.
type DistributionService interface {
	Create(ctx context.Context, actor repo.Actor, in distribution.CreateInput) (*distribution.Distribution, error)
	Get(ctx context.Context, id uuid.UUID) (*distribution.Distribution, error)
	List(ctx context.Context, opts util.PageOptions) (util.Page[distribution.Distribution], error)
	ListByBeneficiary(ctx context.Context, actor repo.Actor, beneficiaryID uuid.UUID, opts util.PageOptions) (util.Page[distribution.Distribution], error)
	Update(ctx context.Context, actor repo.Actor, id uuid.UUID, in distribution.UpdateInput) (*distribution.Distribution, error)
	Remove(ctx context.Context, actor repo.Actor, id uuid.UUID) error
}

var (
	_ AuthService         = (*service.AuthService)(nil)
	_ UserService         = (*service.UserService)(nil)
	_ CategoryService     = (*category.Service)(nil)
	_ ItemService         = (*item.Service)(nil)
	_ InventoryService    = (*inventory.Service)(nil)
	_ DistributionService = (*distribution.Service)(nil)
)

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

type stubAuth struct {
	result       *service.AuthResult
	err          error
	user         *repo.User
	refreshToken string
	loggedOut    string
}

func (s *stubAuth) Register(_ context.Context, _ service.RegisterInput) (*service.AuthResult, error) {
	return s.result, s.err
}

func (s *stubAuth) Login(_ context.Context, _ service.LoginInput) (*service.AuthResult, error) {
	return s.result, s.err
}

func (s *stubAuth) Refresh(_ context.Context, raw string) (*service.AuthResult, error) {
	s.refreshToken = raw
	return s.result, s.err
}

func (s *stubAuth) Logout(_ context.Context, raw string) error {
	s.loggedOut = raw
	return s.err
}

func (s *stubAuth) Profile(_ context.Context, _ uuid.UUID) (*repo.User, error) {
	return s.user, s.err
}

type stubUsers struct {
	page     util.Page[repo.User]
	user     *repo.User
	err      error
	lastRole *repo.Role
}

func (s *stubUsers) List(_ context.Context, role *repo.Role, opts util.PageOptions) (util.Page[repo.User], error) {
	s.lastRole = role
	return s.page, s.err
}

func (s *stubUsers) Get(_ context.Context, _ repo.Actor, _ uuid.UUID) (*repo.User, error) {
	return s.user, s.err
}

func (s *stubUsers) Create(_ context.Context, _ service.CreateUserInput) (*repo.User, error) {
	return s.user, s.err
}

func (s *stubUsers) Update(_ context.Context, _ repo.Actor, _ uuid.UUID, _ service.UpdateUserInput) (*repo.User, error) {
	return s.user, s.err
}

func (s *stubUsers) Remove(_ context.Context, _ uuid.UUID) error {
	return s.err
}

type stubCategories struct {
	list []category.Category
	err  error
}

func (s *stubCategories) List(_ context.Context) ([]category.Category, error) {
	return s.list, s.err
}

func (s *stubCategories) Get(_ context.Context, id uuid.UUID) (*category.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &category.Category{ID: id, Name: "Roupas"}, nil
}

func (s *stubCategories) Create(_ context.Context, in category.CreateInput) (*category.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &category.Category{ID: uuid.New(), Name: in.Name, Description: in.Description}, nil
}

func (s *stubCategories) Update(_ context.Context, id uuid.UUID, _ category.UpdateInput) (*category.Category, error) {
	return &category.Category{ID: id}, s.err
}

func (s *stubCategories) Remove(_ context.Context, _ uuid.UUID) error {
	return s.err
}

type stubItems struct {
	item       *item.Item
	page       util.Page[item.Item]
	err        error
	lastFilter item.Filter
	lastInput  item.CreateInput
	lastPhotos []item.Photo
	lastActor  repo.Actor
}

func (s *stubItems) Get(_ context.Context, _ uuid.UUID) (*item.Item, error) {
	return s.item, s.err
}

func (s *stubItems) List(_ context.Context, filter item.Filter, _ util.PageOptions) (util.Page[item.Item], error) {
	s.lastFilter = filter
	return s.page, s.err
}

func (s *stubItems) Create(_ context.Context, actor repo.Actor, in item.CreateInput, photos []item.Photo) (*item.Item, error) {
	s.lastActor, s.lastInput, s.lastPhotos = actor, in, photos
	return s.item, s.err
}

func (s *stubItems) Update(_ context.Context, _ repo.Actor, _ uuid.UUID, _ item.UpdateInput) (*item.Item, error) {
	return s.item, s.err
}

func (s *stubItems) Remove(_ context.Context, _ repo.Actor, _ uuid.UUID) error {
	return s.err
}

func (s *stubItems) Reserve(_ context.Context, actor repo.Actor, _, _ uuid.UUID) (*item.Item, error) {
	s.lastActor = actor
	return s.item, s.err
}

func (s *stubItems) Release(_ context.Context, _ repo.Actor, _ uuid.UUID) (*item.Item, error) {
	return s.item, s.err
}

func (s *stubItems) AddPhotos(_ context.Context, _ repo.Actor, _ uuid.UUID, photos []item.Photo) (*item.Item, error) {
	s.lastPhotos = photos
	return s.item, s.err
}

func (s *stubItems) RemovePhoto(_ context.Context, _ repo.Actor, _ uuid.UUID, _ string) (*item.Item, error) {
	return s.item, s.err
}

type stubInventory struct {
	entry *inventory.Entry
	low   []inventory.Entry
	err   error
}

func (s *stubInventory) Create(_ context.Context, _ inventory.CreateInput) (*inventory.Entry, error) {
	return s.entry, s.err
}

func (s *stubInventory) Get(_ context.Context, _ uuid.UUID) (*inventory.Entry, error) {
	return s.entry, s.err
}

func (s *stubInventory) GetByItem(_ context.Context, _ uuid.UUID) (*inventory.Entry, error) {
	return s.entry, s.err
}

func (s *stubInventory) List(_ context.Context, opts util.PageOptions) (util.Page[inventory.Entry], error) {
	return util.NewPage[inventory.Entry](nil, opts, 0), s.err
}

func (s *stubInventory) LowStock(_ context.Context) ([]inventory.Entry, error) {
	return s.low, s.err
}

func (s *stubInventory) Update(_ context.Context, _ uuid.UUID, _ inventory.UpdateInput) (*inventory.Entry, error) {
	return s.entry, s.err
}

func (s *stubInventory) Remove(_ context.Context, _ uuid.UUID) error {
	return s.err
}

type stubDistributions struct {
	dist      *distribution.Distribution
	err       error
	lastInput distribution.CreateInput
	lastOpts  util.PageOptions
}

func (s *stubDistributions) Create(_ context.Context, _ repo.Actor, in distribution.CreateInput) (*distribution.Distribution, error) {
	s.lastInput = in
	return s.dist, s.err
}

func (s *stubDistributions) Get(_ context.Context, _ uuid.UUID) (*distribution.Distribution, error) {
	return s.dist, s.err
}

func (s *stubDistributions) List(_ context.Context, opts util.PageOptions) (util.Page[distribution.Distribution], error) {
	s.lastOpts = opts
	return util.NewPage[distribution.Distribution](nil, opts, 0), s.err
}

func (s *stubDistributions) ListByBeneficiary(_ context.Context, _ repo.Actor, _ uuid.UUID, opts util.PageOptions) (util.Page[distribution.Distribution], error) {
	return util.NewPage[distribution.Distribution](nil, opts, 0), s.err
}

func (s *stubDistributions) Update(_ context.Context, _ repo.Actor, _ uuid.UUID, _ distribution.UpdateInput) (*distribution.Distribution, error) {
	return s.dist, s.err
}

func (s *stubDistributions) Remove(_ context.Context, _ repo.Actor, _ uuid.UUID) error {
	return s.err
}

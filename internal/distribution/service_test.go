package distribution

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidarios/api/internal/item"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

type fakeStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*repo.User
	items         map[uuid.UUID]*item.Item
	distributions map[uuid.UUID]*Distribution
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         map[uuid.UUID]*repo.User{},
		items:         map[uuid.UUID]*item.Item{},
		distributions: map[uuid.UUID]*Distribution{},
	}
}

func (f *fakeStore) addUser(role repo.Role) *repo.User {
	u := &repo.User{ID: uuid.New(), Name: string(role), Email: uuid.NewString() + "@x.org", Role: role, IsActive: true}
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) addItem(status item.Status) *item.Item {
	it := &item.Item{ID: uuid.New(), Type: item.TypeRoupa, Description: "Casaco", Status: status, Photos: []string{}}
	f.items[it.ID] = it
	return it
}

func (f *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (*repo.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

type itemLookup struct{ *fakeStore }

func (l itemLookup) Get(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	it, ok := l.items[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

type distRepo struct{ *fakeStore }

func (r distRepo) Create(ctx context.Context, p CreateParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it := r.items[p.ItemID]
	if it == nil || it.Status != item.StatusReservado {
		return repo.Conflict("Item com ID %s não está reservado para distribuição.", p.ItemID)
	}
	it.Status = item.StatusDistribuido
	r.distributions[p.ID] = &Distribution{
		ID:            p.ID,
		Date:          p.Date,
		BeneficiaryID: p.BeneficiaryID,
		EmployeeID:    p.EmployeeID,
		Observations:  p.Observations,
		Items:         []item.Item{*it},
	}
	return nil
}

func (r distRepo) Get(ctx context.Context, id uuid.UUID) (*Distribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.distributions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r distRepo) List(ctx context.Context, beneficiaryID *uuid.UUID, opts util.PageOptions) ([]Distribution, int, error) {
	out := []Distribution{}
	for _, d := range r.distributions {
		if beneficiaryID != nil && d.BeneficiaryID != *beneficiaryID {
			continue
		}
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (r distRepo) UpdateObservations(ctx context.Context, id uuid.UUID, observations string) error {
	d, ok := r.distributions[id]
	if !ok {
		return repo.ErrNotFound
	}
	d.Observations = &observations
	return nil
}

func (r distRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.distributions[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.distributions, id)
	return nil
}

func newTestService(f *fakeStore) *Service {
	return &Service{repo: distRepo{f}, users: f, items: itemLookup{f}}
}

func staff(u *repo.User) repo.Actor {
	return repo.Actor{ID: u.ID, Role: u.Role}
}

func TestCreateMarksItemDistributed(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	employee := f.addUser(repo.RoleFuncionario)
	beneficiary := f.addUser(repo.RoleBeneficiario)
	it := f.addItem(item.StatusReservado)

	obs := "  entregue na sede  "
	d, err := svc.Create(context.Background(), staff(employee), CreateInput{BeneficiaryID: beneficiary.ID, ItemID: it.ID, Observations: &obs})
	require.NoError(t, err)

	assert.Equal(t, beneficiary.ID, d.BeneficiaryID)
	assert.Equal(t, employee.ID, d.EmployeeID)
	assert.Equal(t, "entregue na sede", *d.Observations)
	require.Len(t, d.Items, 1)
	assert.Equal(t, item.StatusDistribuido, f.items[it.ID].Status)
	assert.WithinDuration(t, time.Now(), d.Date, time.Minute)
}

func TestCreateUsesExplicitEmployee(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	admin := f.addUser(repo.RoleAdmin)
	employee := f.addUser(repo.RoleFuncionario)
	beneficiary := f.addUser(repo.RoleBeneficiario)
	it := f.addItem(item.StatusReservado)

	d, err := svc.Create(context.Background(), staff(admin), CreateInput{BeneficiaryID: beneficiary.ID, EmployeeID: &employee.ID, ItemID: it.ID})
	require.NoError(t, err)
	assert.Equal(t, employee.ID, d.EmployeeID)
}

func TestCreateRejectsNonBeneficiary(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	employee := f.addUser(repo.RoleFuncionario)
	donor := f.addUser(repo.RoleDoador)
	it := f.addItem(item.StatusReservado)

	_, err := svc.Create(context.Background(), staff(employee), CreateInput{BeneficiaryID: donor.ID, ItemID: it.ID})
	require.ErrorIs(t, err, repo.ErrConflict)
	assert.Contains(t, err.Error(), "não é um beneficiário")
	assert.Equal(t, item.StatusReservado, f.items[it.ID].Status)
	assert.Empty(t, f.distributions)
}

func TestCreateRejectsNonStaffEmployee(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	admin := f.addUser(repo.RoleAdmin)
	beneficiary := f.addUser(repo.RoleBeneficiario)
	other := f.addUser(repo.RoleBeneficiario)
	it := f.addItem(item.StatusReservado)

	_, err := svc.Create(context.Background(), staff(admin), CreateInput{BeneficiaryID: beneficiary.ID, EmployeeID: &other.ID, ItemID: it.ID})
	require.ErrorIs(t, err, repo.ErrConflict)
	assert.Contains(t, err.Error(), "não é um funcionário ou admin")
}

func TestCreateRejectsItemNotReserved(t *testing.T) {
	for _, status := range []item.Status{item.StatusDisponivel, item.StatusDistribuido} {
		t.Run(string(status), func(t *testing.T) {
			f := newFakeStore()
			svc := newTestService(f)
			employee := f.addUser(repo.RoleFuncionario)
			beneficiary := f.addUser(repo.RoleBeneficiario)
			it := f.addItem(status)

			_, err := svc.Create(context.Background(), staff(employee), CreateInput{BeneficiaryID: beneficiary.ID, ItemID: it.ID})
			require.ErrorIs(t, err, repo.ErrConflict)
			assert.Contains(t, err.Error(), "não está reservado")
			assert.Equal(t, status, f.items[it.ID].Status)
		})
	}
}

func TestCreateMissingReferences(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	employee := f.addUser(repo.RoleFuncionario)
	beneficiary := f.addUser(repo.RoleBeneficiario)

	_, err := svc.Create(context.Background(), staff(employee), CreateInput{BeneficiaryID: uuid.New(), ItemID: uuid.New()})
	require.ErrorIs(t, err, repo.ErrNotFound)
	assert.Contains(t, err.Error(), "Usuário")

	_, err = svc.Create(context.Background(), staff(employee), CreateInput{BeneficiaryID: beneficiary.ID, ItemID: uuid.New()})
	require.ErrorIs(t, err, repo.ErrNotFound)
	assert.Contains(t, err.Error(), "Item")
}

func TestCreateChecksBeneficiaryBeforeItem(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	employee := f.addUser(repo.RoleFuncionario)
	donor := f.addUser(repo.RoleDoador)

	_, err := svc.Create(context.Background(), staff(employee), CreateInput{BeneficiaryID: donor.ID, ItemID: uuid.New()})
	require.ErrorIs(t, err, repo.ErrConflict)
}

func TestCreateRequiresStaff(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	beneficiary := f.addUser(repo.RoleBeneficiario)
	it := f.addItem(item.StatusReservado)

	_, err := svc.Create(context.Background(), staff(beneficiary), CreateInput{BeneficiaryID: beneficiary.ID, ItemID: it.ID})
	require.ErrorIs(t, err, repo.ErrForbidden)
}

func TestCreateConcurrentOnlyOneWins(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	employee := f.addUser(repo.RoleFuncionario)
	beneficiary := f.addUser(repo.RoleBeneficiario)
	it := f.addItem(item.StatusReservado)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), staff(employee), CreateInput{BeneficiaryID: beneficiary.ID, ItemID: it.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, repo.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
	assert.Len(t, f.distributions, 1)
}

func TestUpdateAndRemovePermissions(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	admin := f.addUser(repo.RoleAdmin)
	employee := f.addUser(repo.RoleFuncionario)
	beneficiary := f.addUser(repo.RoleBeneficiario)
	it := f.addItem(item.StatusReservado)

	d, err := svc.Create(context.Background(), staff(employee), CreateInput{BeneficiaryID: beneficiary.ID, ItemID: it.ID})
	require.NoError(t, err)

	obs := "retirado pelo responsável"
	_, err = svc.Update(context.Background(), staff(beneficiary), d.ID, UpdateInput{Observations: &obs})
	require.ErrorIs(t, err, repo.ErrForbidden)

	updated, err := svc.Update(context.Background(), staff(employee), d.ID, UpdateInput{Observations: &obs})
	require.NoError(t, err)
	assert.Equal(t, obs, *updated.Observations)

	err = svc.Remove(context.Background(), staff(employee), d.ID)
	require.ErrorIs(t, err, repo.ErrForbidden)

	require.NoError(t, svc.Remove(context.Background(), staff(admin), d.ID))
	assert.Equal(t, item.StatusDistribuido, f.items[it.ID].Status)

	err = svc.Remove(context.Background(), staff(admin), d.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
	assert.Contains(t, err.Error(), "Distribuição")
}

func TestListByBeneficiaryAccess(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	employee := f.addUser(repo.RoleFuncionario)
	beneficiary := f.addUser(repo.RoleBeneficiario)
	other := f.addUser(repo.RoleBeneficiario)
	it := f.addItem(item.StatusReservado)

	_, err := svc.Create(context.Background(), staff(employee), CreateInput{BeneficiaryID: beneficiary.ID, ItemID: it.ID})
	require.NoError(t, err)

	page, err := svc.ListByBeneficiary(context.Background(), staff(beneficiary), beneficiary.ID, util.DefaultPageOptions())
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Meta.ItemCount)

	_, err = svc.ListByBeneficiary(context.Background(), staff(other), beneficiary.ID, util.DefaultPageOptions())
	require.ErrorIs(t, err, repo.ErrForbidden)
}

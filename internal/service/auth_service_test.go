package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/solidarios/api/internal/auth"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

type stubAuthRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*repo.User
	tokens    map[string]*repo.RefreshToken
	rehashed  map[uuid.UUID]string
	createErr error
	// onRevoke roda antes da revogação condicional
	onRevoke func(*repo.RefreshToken)
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		users:    map[uuid.UUID]*repo.User{},
		tokens:   map[string]*repo.RefreshToken{},
		rehashed: map[uuid.UUID]string{},
	}
}

func (s *stubAuthRepo) add(u repo.User) *repo.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
	return &u
}

func (s *stubAuthRepo) CreateUser(ctx context.Context, p repo.CreateUserParams) (*repo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	u := &repo.User{ID: uuid.New(), Name: p.Name, Email: strings.ToLower(p.Email), PasswordHash: p.PasswordHash, Role: p.Role, IsActive: true, Phone: p.Phone, Address: p.Address}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubAuthRepo) GetUserByEmail(ctx context.Context, email string) (*repo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *stubAuthRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*repo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

func (s *stubAuthRepo) UpdateUserPassword(ctx context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rehashed[id] = hash
	s.users[id].PasswordHash = hash
	return nil
}

func (s *stubAuthRepo) InsertRefreshToken(ctx context.Context, userID uuid.UUID, hash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[hash] = &repo.RefreshToken{ID: uuid.New(), UserID: userID, TokenHash: hash, ExpiresAt: expiresAt}
	return nil
}

func (s *stubAuthRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (*repo.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[hash]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (s *stubAuthRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[hash]
	if ok && s.onRevoke != nil {
		s.onRevoke(t)
	}
	if !ok || t.IsRevoked {
		return repo.ErrNotFound
	}
	t.IsRevoked = true
	return nil
}

func (s *stubAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var hashes []string
	for h, t := range s.tokens {
		if t.UserID == userID && !t.IsRevoked {
			t.IsRevoked = true
			hashes = append(hashes, h)
		}
	}
	return hashes, nil
}

type stubRedis struct {
	mu    sync.Mutex
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = fmt.Sprint(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) GetDel(ctx context.Context, key string) *redis.StringCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	delete(s.store, key)
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.store[key]
	return ok
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func newAuthService(r *stubAuthRepo, rd *stubRedis) *AuthService {
	return &AuthService{
		repo:       r,
		redis:      rd,
		jwt:        auth.NewJWTManager(strings.Repeat("a", 32), time.Minute),
		refreshTTL: time.Hour,
	}
}

func TestRegisterDefaultsToDoador(t *testing.T) {
	r := newStubAuthRepo()
	rd := &stubRedis{}
	svc := newAuthService(r, rd)

	res, err := svc.Register(context.Background(), RegisterInput{
		Name: "<i>João</i> Silva", Email: " joao@exemplo.com ", Password: "senha123", Phone: "85988887777", Address: "Rua A, 10",
	})
	require.NoError(t, err)
	assert.Equal(t, repo.RoleDoador, res.User.Role)
	assert.Equal(t, "João Silva", res.User.Name)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "active", rd.store[auth.RefreshRedisKey(auth.HashRefreshToken(res.RefreshToken))])

	claims, err := svc.jwt.ParseAndValidate(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "DOADOR", claims.Role)
}

func TestRegisterRejectsStaffRoleAndBadPhone(t *testing.T) {
	svc := newAuthService(newStubAuthRepo(), &stubRedis{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "X", Email: "x@x.com", Password: "senha123", Role: repo.RoleAdmin, Phone: "99999999999", Address: "Rua",
	})
	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")
	assert.Contains(t, verr.Fields, "phone")
}

func TestLoginRejectsWrongPasswordAndDisabled(t *testing.T) {
	r := newStubAuthRepo()
	hash, err := auth.Hash("senha123")
	require.NoError(t, err)
	r.add(repo.User{ID: uuid.New(), Email: "ana@x.com", PasswordHash: hash, Role: repo.RoleDoador, IsActive: true})
	r.add(repo.User{ID: uuid.New(), Email: "off@x.com", PasswordHash: hash, Role: repo.RoleDoador, IsActive: false})
	svc := newAuthService(r, &stubRedis{})

	_, err = svc.Login(context.Background(), LoginInput{Email: "ana@x.com", Password: "errada1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "ninguem@x.com", Password: "senha123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "off@x.com", Password: "senha123"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLoginRehashesLegacyBcrypt(t *testing.T) {
	r := newStubAuthRepo()
	legacy, err := bcrypt.GenerateFromPassword([]byte("senha123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := r.add(repo.User{ID: uuid.New(), Email: "ana@x.com", PasswordHash: string(legacy), Role: repo.RoleBeneficiario, IsActive: true})
	svc := newAuthService(r, &stubRedis{})

	res, err := svc.Login(context.Background(), LoginInput{Email: "ana@x.com", Password: "senha123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.True(t, strings.HasPrefix(r.rehashed[user.ID], "$argon2id$"))
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	r := newStubAuthRepo()
	rd := &stubRedis{}
	hash, err := auth.Hash("senha123")
	require.NoError(t, err)
	r.add(repo.User{ID: uuid.New(), Email: "ana@x.com", PasswordHash: hash, Role: repo.RoleFuncionario, IsActive: true})
	svc := newAuthService(r, rd)

	first, err := svc.Login(context.Background(), LoginInput{Email: "ana@x.com", Password: "senha123"})
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	_, stillActive := rd.store[auth.RefreshRedisKey(auth.HashRefreshToken(first.RefreshToken))]
	assert.False(t, stillActive)

	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	// a reutilização revoga também o token novo
	_, err = svc.Refresh(context.Background(), second.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRefreshConcurrentRotationHasOneWinner(t *testing.T) {
	r := newStubAuthRepo()
	rd := &stubRedis{}
	hash, err := auth.Hash("senha123")
	require.NoError(t, err)
	r.add(repo.User{ID: uuid.New(), Email: "ana@x.com", PasswordHash: hash, Role: repo.RoleBeneficiario, IsActive: true})
	svc := newAuthService(r, rd)

	login, err := svc.Login(context.Background(), LoginInput{Email: "ana@x.com", Password: "senha123"})
	require.NoError(t, err)

	const workers = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Refresh(context.Background(), login.RefreshToken)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrRefreshInvalid)
	}
	assert.Equal(t, 1, wins)
}

func TestRefreshLosesWhenRowRevokedMeanwhile(t *testing.T) {
	r := newStubAuthRepo()
	rd := &stubRedis{}
	user := r.add(repo.User{ID: uuid.New(), Email: "a@x.com", Role: repo.RoleDoador, IsActive: true})
	raw, h, err := auth.GenerateRefreshToken()
	require.NoError(t, err)
	require.NoError(t, r.InsertRefreshToken(context.Background(), user.ID, h, time.Now().Add(time.Hour)))
	rd.Set(context.Background(), auth.RefreshRedisKey(h), "active", time.Hour)

	// outra réplica revogou a linha depois da leitura
	r.onRevoke = func(t *repo.RefreshToken) { t.IsRevoked = true }

	res, err := newAuthService(r, rd).Refresh(context.Background(), raw)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
	assert.Nil(t, res)
	assert.Len(t, r.tokens, 1)
	assert.False(t, rd.has(auth.RefreshRedisKey(h)))
}

func TestRefreshRejectsUnknownAndExpired(t *testing.T) {
	r := newStubAuthRepo()
	rd := &stubRedis{}
	svc := newAuthService(r, rd)

	_, err := svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrRefreshInvalid)
	_, err = svc.Refresh(context.Background(), "desconhecido")
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	user := r.add(repo.User{ID: uuid.New(), Email: "a@x.com", Role: repo.RoleDoador, IsActive: true})
	raw, h, err := auth.GenerateRefreshToken()
	require.NoError(t, err)
	require.NoError(t, r.InsertRefreshToken(context.Background(), user.ID, h, time.Now().Add(-time.Minute)))
	rd.Set(context.Background(), auth.RefreshRedisKey(h), "active", time.Hour)

	_, err = svc.Refresh(context.Background(), raw)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestLogoutRevokes(t *testing.T) {
	r := newStubAuthRepo()
	rd := &stubRedis{}
	hash, err := auth.Hash("senha123")
	require.NoError(t, err)
	r.add(repo.User{ID: uuid.New(), Email: "ana@x.com", PasswordHash: hash, Role: repo.RoleDoador, IsActive: true})
	svc := newAuthService(r, rd)

	res, err := svc.Login(context.Background(), LoginInput{Email: "ana@x.com", Password: "senha123"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), res.RefreshToken))

	_, err = svc.Refresh(context.Background(), res.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestProfileNotFound(t *testing.T) {
	svc := newAuthService(newStubAuthRepo(), &stubRedis{})
	_, err := svc.Profile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/solidarios/api/internal/auth"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = auth.ErrInvalidRefresh
)

const refreshActive = "active"

type authRepository interface {
	CreateUser(ctx context.Context, p repo.CreateUserParams) (*repo.User, error)
	GetUserByEmail(ctx context.Context, email string) (*repo.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, hash string) error
	InsertRefreshToken(ctx context.Context, userID uuid.UUID, hash string, expiresAt time.Time) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*repo.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, hash string) error
	RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação e sessões.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r *repo.Queries, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// RegisterInput são os dados do cadastro público.
type RegisterInput struct {
	Name     string    `json:"name" validate:"required,max=100"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=6"`
	Role     repo.Role `json:"role" validate:"omitempty,oneof=DOADOR BENEFICIARIO"`
	Phone    string    `json:"phone" validate:"required,phonebr"`
	Address  string    `json:"address" validate:"required"`
}

// LoginInput são as credenciais de login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResult representa retorno padrão de autenticações.
type AuthResult struct {
	AccessToken   string     `json:"accessToken"`
	RefreshToken  string     `json:"refreshToken"`
	ExpiresIn     int64      `json:"expiresIn"`
	User          *repo.User `json:"user"`
	RefreshExpiry time.Time  `json:"-"`
}

// Register cria conta de doador ou beneficiário e já inicia sessão.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = util.SanitizeText(in.Name)
	in.Address = util.SanitizeText(in.Address)
	in.Email = strings.TrimSpace(in.Email)
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

	log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("usuário registrado")
	return s.issue(ctx, user)
}

// Login autentica por email e senha.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(in.Password, user.PasswordHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.Hash(in.Password); err == nil {
			if err := s.repo.UpdateUserPassword(ctx, user.ID, hash); err != nil {
				log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("login: rehash falhou")
			}
		}
	}

	return s.issue(ctx, user)
}

// Refresh troca refresh token por novos tokens, revogando o anterior.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*AuthResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.IsRevoked {
		// reutilização de token já rotacionado: derruba todas as sessões
		log.Warn().Str("user_id", record.UserID.String()).Msg("refresh: token revogado reutilizado")
		if err := s.revokeAll(ctx, record.UserID); err != nil {
			return nil, err
		}
		return nil, ErrRefreshInvalid
	}
	if util.Now().After(record.ExpiresAt) {
		return nil, ErrRefreshInvalid
	}

	// GETDEL reivindica a sessão: entre refreshes concorrentes só um lê "active"
	status, err := s.redis.GetDel(ctx, auth.RefreshRedisKey(hash)).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != refreshActive {
		return nil, ErrRefreshInvalid
	}

	user, err := s.repo.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// só um refresh concorrente revoga a linha no banco
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Str("user_id", record.UserID.String()).Msg("refresh: token já rotacionado")
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	return s.issue(ctx, user)
}

// Logout revoga refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// Profile retorna o usuário autenticado.
func (s *AuthService) Profile(ctx context.Context, subject uuid.UUID) (*repo.User, error) {
	user, err := s.repo.GetUserByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, repo.NotFound("Usuário com ID %s não encontrado", subject)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *repo.User) (*AuthResult, error) {
	token, _, err := s.jwt.GenerateAccessToken(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	if err := s.repo.InsertRefreshToken(ctx, user.ID, refreshHash, expires); err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, auth.RefreshRedisKey(refreshHash), refreshActive, s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		ExpiresIn:     int64(s.jwt.AccessTTL().Seconds()),
		User:          user,
		RefreshExpiry: expires,
	}, nil
}

func (s *AuthService) revokeAll(ctx context.Context, userID uuid.UUID) error {
	hashes, err := s.repo.RevokeUserRefreshTokens(ctx, userID)
	if err != nil {
		return err
	}
	if len(hashes) == 0 {
		return nil
	}
	keys := make([]string, len(hashes))
	for i, h := range hashes {
		keys[i] = auth.RefreshRedisKey(h)
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

package category

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

const (
	listCacheKey = "categories:all"
	listCacheTTL = time.Minute
)

type repository interface {
	Create(ctx context.Context, in CreateInput) (*Category, error)
	Get(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Service aplica regras de categorias com cache da listagem.
type Service struct {
	repo   repository
	cache  cache
	logger zerolog.Logger
}

// NewService cria serviço; cache pode ser nil.
func NewService(r *Repository, redisClient *redis.Client) *Service {
	s := &Service{repo: r, logger: log.With().Str("component", "categories").Logger()}
	if redisClient != nil {
		s.cache = redisClient
	}
	return s
}

// List devolve todas as categorias, usando o cache quando disponível.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, listCacheKey).Bytes()
		if err == nil {
			var cached []Category
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("cache de categorias indisponível")
		}
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(categories); err == nil {
			if err := s.cache.Set(ctx, listCacheKey, payload, listCacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("falha ao gravar cache de categorias")
			}
		}
	}
	return categories, nil
}

// Get busca uma categoria.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, err := s.repo.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, repo.NotFound("Categoria com ID %s não encontrada", id)
	}
	return c, err
}

// Create cadastra categoria.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Category, error) {
	in.Name = util.SanitizeText(in.Name)
	in.Description = util.SanitizeOptional(in.Description)
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

// Update altera categoria existente.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Category, error) {
	if in.Name != nil {
		clean := util.SanitizeText(*in.Name)
		in.Name = &clean
	}
	in.Description = util.SanitizeOptional(in.Description)
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	c, err := s.repo.Update(ctx, id, in)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, repo.NotFound("Categoria com ID %s não encontrada", id)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

// Remove apaga a categoria.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.NotFound("Categoria com ID %s não encontrada", id)
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, listCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("falha ao invalidar cache de categorias")
	}
}

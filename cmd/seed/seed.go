package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/solidarios/api/internal/auth"
	"github.com/solidarios/api/internal/category"
	"github.com/solidarios/api/internal/repo"
)

// Seed é o formato do arquivo YAML.
type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
	Users      []SeedUser     `yaml:"users"`
}

type SeedCategory struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
}

type SeedUser struct {
	Name     string    `yaml:"name"`
	Email    string    `yaml:"email"`
	Password string    `yaml:"password"`
	Role     repo.Role `yaml:"role"`
	Phone    *string   `yaml:"phone"`
	Address  *string   `yaml:"address"`
}

type result struct {
	Categories int
	Users      int
	Skipped    int
}

type categoryCreator interface {
	Create(ctx context.Context, in category.CreateInput) (*category.Category, error)
}

type userStore interface {
	GetUserByEmail(ctx context.Context, email string) (*repo.User, error)
	CreateUser(ctx context.Context, p repo.CreateUserParams) (*repo.User, error)
}

func parseSeed(raw []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	for i, c := range s.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("categories[%d]: name obrigatório", i)
		}
	}
	for i, u := range s.Users {
		if u.Role == "" {
			s.Users[i].Role = repo.RoleAdmin
		} else {
			s.Users[i].Role = repo.Role(strings.ToUpper(string(u.Role)))
		}
		if !s.Users[i].Role.Valid() {
			return nil, fmt.Errorf("users[%d]: papel %q inválido", i, u.Role)
		}
		if strings.TrimSpace(u.Email) == "" || len(u.Password) < 6 {
			return nil, fmt.Errorf("users[%d]: email e senha (mínimo 6) obrigatórios", i)
		}
	}
	return &s, nil
}

// apply é idempotente: categorias e emails existentes são ignorados.
func apply(ctx context.Context, s *Seed, categories categoryCreator, users userStore) (result, error) {
	var res result

	for _, c := range s.Categories {
		_, err := categories.Create(ctx, category.CreateInput{Name: strings.TrimSpace(c.Name), Description: c.Description})
		switch {
		case errors.Is(err, repo.ErrConflict):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("categoria %s: %w", c.Name, err)
		default:
			res.Categories++
		}
	}

	for _, u := range s.Users {
		if _, err := users.GetUserByEmail(ctx, u.Email); err == nil {
			res.Skipped++
			continue
		} else if !errors.Is(err, repo.ErrNotFound) {
			return res, fmt.Errorf("usuário %s: %w", u.Email, err)
		}

		hash, err := auth.Hash(u.Password)
		if err != nil {
			return res, fmt.Errorf("hash: %w", err)
		}
		created, err := users.CreateUser(ctx, repo.CreateUserParams{
			Name:         u.Name,
			Email:        u.Email,
			PasswordHash: hash,
			Role:         u.Role,
			Phone:        u.Phone,
			Address:      u.Address,
		})
		if err != nil {
			return res, fmt.Errorf("usuário %s: %w", u.Email, err)
		}
		log.Info().Str("user_id", created.ID.String()).Str("role", string(created.Role)).Msg("usuário criado")
		res.Users++
	}

	return res, nil
}

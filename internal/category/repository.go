package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/solidarios/api/internal/db"
	"github.com/solidarios/api/internal/repo"
)

// Repository provê acesso à tabela de categorias.
type Repository struct {
	db db.DBTX
}

// NewRepository cria instância do repositório.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// Create insere categoria; nome repetido vira conflito.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*Category, error) {
	row := r.db.QueryRow(ctx, `
        INSERT INTO categories (name, description)
        VALUES ($1, $2)
        RETURNING id, name, description`, in.Name, in.Description)
	c, err := scanCategory(row)
	if err != nil && db.IsUniqueViolation(err) {
		return nil, repo.Conflict("Categoria %s já existe", in.Name)
	}
	return c, err
}

// Get busca categoria pelo ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, description FROM categories WHERE id = $1`, id)
	return scanCategory(row)
}

// List devolve todas as categorias por nome.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return categories, nil
}

// Update altera nome e descrição.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Category, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if in.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", idx))
		args = append(args, *in.Name)
		idx++
	}
	if in.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, *in.Description)
		idx++
	}

	if len(setParts) == 0 {
		return r.Get(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE categories SET %s WHERE id = $%d RETURNING id, name, description`, strings.Join(setParts, ", "), idx)
	c, err := scanCategory(r.db.QueryRow(ctx, query, args...))
	if err != nil && db.IsUniqueViolation(err) {
		return nil, repo.Conflict("Categoria %s já existe", *in.Name)
	}
	return c, err
}

// Delete remove a categoria se nenhum item a referencia.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return repo.Conflict("Categoria com ID %s possui itens vinculados", id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

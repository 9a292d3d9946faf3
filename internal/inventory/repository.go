package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/solidarios/api/internal/db"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

const columns = `id, item_id, quantity, location, alert_level, created_at, updated_at`

// Repository provê acesso à tabela de estoque.
type Repository struct {
	db db.DBTX
}

// NewRepository cria instância do repositório.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// Create insere registro; um item só pode ter um registro.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*Entry, error) {
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	row := r.db.QueryRow(ctx, `
        INSERT INTO inventory (item_id, quantity, location, alert_level)
        VALUES ($1, $2, $3, $4)
        RETURNING `+columns, in.ItemID, quantity, in.Location, in.AlertLevel)

	e, err := scanEntry(row)
	switch {
	case err == nil:
		return e, nil
	case db.IsUniqueViolation(err):
		return nil, repo.Conflict("Item com ID %s já possui registro de estoque", in.ItemID)
	case db.IsForeignKeyViolation(err):
		return nil, repo.NotFound("Item com ID %s não encontrado", in.ItemID)
	}
	return nil, err
}

// Get busca pelo ID do registro.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return scanEntry(r.db.QueryRow(ctx, `SELECT `+columns+` FROM inventory WHERE id = $1`, id))
}

// GetByItem busca pelo item.
func (r *Repository) GetByItem(ctx context.Context, itemID uuid.UUID) (*Entry, error) {
	return scanEntry(r.db.QueryRow(ctx, `SELECT `+columns+` FROM inventory WHERE item_id = $1`, itemID))
}

// List pagina registros por data de criação.
func (r *Repository) List(ctx context.Context, opts util.PageOptions) ([]Entry, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM inventory`).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "ASC"
	if opts.Order == util.OrderDESC {
		order = "DESC"
	}
	entries, err := r.query(ctx, fmt.Sprintf(`SELECT %s FROM inventory ORDER BY created_at %s, id LIMIT $1 OFFSET $2`, columns, order), opts.Take, opts.Skip())
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListLowStock devolve registros com quantidade no nível de alerta ou abaixo.
func (r *Repository) ListLowStock(ctx context.Context) ([]Entry, error) {
	return r.query(ctx, `
        SELECT `+columns+`
        FROM inventory
        WHERE alert_level IS NOT NULL AND quantity <= alert_level
        ORDER BY quantity ASC, id`)
}

// Update altera os campos informados.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Entry, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if in.Quantity != nil {
		setParts = append(setParts, fmt.Sprintf("quantity = $%d", idx))
		args = append(args, *in.Quantity)
		idx++
	}
	if in.Location != nil {
		setParts = append(setParts, fmt.Sprintf("location = $%d", idx))
		args = append(args, *in.Location)
		idx++
	}
	if in.AlertLevel != nil {
		setParts = append(setParts, fmt.Sprintf("alert_level = $%d", idx))
		args = append(args, *in.AlertLevel)
		idx++
	}

	if len(setParts) == 0 {
		return r.Get(ctx, id)
	}

	setParts = append(setParts, "updated_at = now()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE inventory SET %s WHERE id = $%d RETURNING %s`, strings.Join(setParts, ", "), idx, columns)
	return scanEntry(r.db.QueryRow(ctx, query, args...))
}

// Delete remove o registro.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Entry, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.ItemID, &e.Quantity, &e.Location, &e.AlertLevel, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

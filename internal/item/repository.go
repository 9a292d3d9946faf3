package item

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/solidarios/api/internal/db"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

// ErrPhotoNotInItem indica URL ausente da lista de fotos do item.
var ErrPhotoNotInItem = errors.New("foto não pertence ao item")

const columns = `id, type, description, conservation_state, size, received_date, status, photos, donor_id, category_id, reserved_date, reserved_by_id`

// Columns devolve a lista de colunas com prefixo de alias, para joins.
func Columns(alias string) string {
	if alias == "" {
		return columns
	}
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

// Repository provê acesso à tabela de itens.
type Repository struct {
	db db.DBTX
}

// NewRepository cria instância do repositório.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// Create insere item já com ID definido pelo serviço.
func (r *Repository) Create(ctx context.Context, it Item) (*Item, error) {
	photos := it.Photos
	if photos == nil {
		photos = []string{}
	}
	row := r.db.QueryRow(ctx, `
        INSERT INTO items (id, type, description, conservation_state, size, received_date, status, photos, donor_id, category_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+columns,
		it.ID, string(it.Type), it.Description, it.ConservationState, it.Size, it.ReceivedDate, string(StatusDisponivel), photos, it.DonorID, it.CategoryID)
	created, err := Scan(row)
	if err != nil {
		return nil, translateFK(err)
	}
	return created, nil
}

// Get busca item pelo ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return Scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM items WHERE id = $1`, id))
}

// List devolve página de itens e total do filtro.
func (r *Repository) List(ctx context.Context, filter Filter, opts util.PageOptions) ([]Item, int, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Status != nil {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, string(*filter.Status))
		idx++
	}
	if filter.DonorID != nil {
		clauses = append(clauses, fmt.Sprintf("donor_id = $%d", idx))
		args = append(args, *filter.DonorID)
		idx++
	}
	if filter.CategoryID != nil {
		clauses = append(clauses, fmt.Sprintf("category_id = $%d", idx))
		args = append(args, *filter.CategoryID)
		idx++
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "ASC"
	if opts.Order == util.OrderDESC {
		order = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM items%s ORDER BY received_date %s, id LIMIT $%d OFFSET $%d`, columns, where, order, idx, idx+1)
	args = append(args, opts.Take, opts.Skip())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := Scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *it)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return items, total, nil
}

// Update altera os campos descritivos.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Item, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	add := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if in.Type != nil {
		add("type", string(*in.Type))
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.ConservationState != nil {
		add("conservation_state", *in.ConservationState)
	}
	if in.Size != nil {
		add("size", *in.Size)
	}
	if in.CategoryID != nil {
		add("category_id", *in.CategoryID)
	}

	if len(setParts) == 0 {
		return r.Get(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE items SET %s WHERE id = $%d RETURNING %s`, strings.Join(setParts, ", "), idx, columns)
	it, err := Scan(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateFK(err)
	}
	return it, nil
}

// Delete remove o item.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// Reserve passa o item de disponivel para reservado de forma condicional.
func (r *Repository) Reserve(ctx context.Context, id, userID uuid.UUID, at time.Time) (*Item, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE items
        SET status = 'reservado', reserved_date = $2, reserved_by_id = $3
        WHERE id = $1 AND status = 'disponivel'
        RETURNING `+columns, id, at, userID)
	it, err := Scan(row)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, r.transitionError(ctx, id, "Item com ID %s não está disponível para reserva.")
	}
	return it, err
}

// Release devolve um item reservado para disponivel.
func (r *Repository) Release(ctx context.Context, id uuid.UUID) (*Item, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE items
        SET status = 'disponivel', reserved_date = NULL, reserved_by_id = NULL
        WHERE id = $1 AND status = 'reservado'
        RETURNING `+columns, id)
	it, err := Scan(row)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, r.transitionError(ctx, id, "Item com ID %s não está reservado.")
	}
	return it, err
}

// AppendPhotos anexa URLs ao fim da lista de fotos.
func (r *Repository) AppendPhotos(ctx context.Context, id uuid.UUID, urls []string) (*Item, error) {
	return Scan(r.db.QueryRow(ctx, `
        UPDATE items SET photos = photos || $2::text[]
        WHERE id = $1
        RETURNING `+columns, id, urls))
}

// RemovePhoto retira a URL da lista; ErrPhotoNotInItem quando ela não consta.
func (r *Repository) RemovePhoto(ctx context.Context, id uuid.UUID, url string) (*Item, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE items SET photos = array_remove(photos, $2)
        WHERE id = $1 AND $2 = ANY(photos)
        RETURNING `+columns, id, url)
	it, err := Scan(row)
	if !errors.Is(err, repo.ErrNotFound) {
		return it, err
	}
	exists, err := r.exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repo.ErrNotFound
	}
	return nil, ErrPhotoNotInItem
}

// transitionError diferencia item inexistente de item em outro status.
func (r *Repository) transitionError(ctx context.Context, id uuid.UUID, conflictMsg string) error {
	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return repo.ErrNotFound
	}
	return repo.Conflict(conflictMsg, id)
}

func (r *Repository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM items WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Scan lê um item; dest extra é preenchido antes das colunas do item.
func Scan(row pgx.Row, extra ...any) (*Item, error) {
	var (
		it     Item
		typ    string
		status string
	)
	dest := make([]any, 0, len(extra)+12)
	dest = append(dest, extra...)
	dest = append(dest, &it.ID, &typ, &it.Description, &it.ConservationState, &it.Size, &it.ReceivedDate, &status, &it.Photos, &it.DonorID, &it.CategoryID, &it.ReservedDate, &it.ReservedByID)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	it.Type = Type(typ)
	it.Status = Status(status)
	if it.Photos == nil {
		it.Photos = []string{}
	}
	return &it, nil
}

func translateFK(err error) error {
	if !db.IsForeignKeyViolation(err) {
		return err
	}
	switch db.ConstraintName(err) {
	case "items_category_id_fkey":
		return repo.NotFound("Categoria informada não encontrada")
	case "items_donor_id_fkey":
		return repo.NotFound("Doador informado não encontrado")
	}
	return repo.NotFound("Referência informada não encontrada")
}

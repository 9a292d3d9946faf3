package distribution

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/solidarios/api/internal/db"
	"github.com/solidarios/api/internal/item"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

const selectDistribution = `
        SELECT d.id, d.date, d.beneficiary_id, d.employee_id, d.observations, b.name, b.email, e.name, e.email
        FROM distributions d
        JOIN users b ON b.id = d.beneficiary_id
        JOIN users e ON e.id = d.employee_id`

// Repository provê acesso a distribuições e seus itens.
type Repository struct {
	db db.DBTX
}

// NewRepository cria instância do repositório.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// Create marca o item como distribuido e grava a distribuição na mesma transação.
// Falha com conflito se o item deixou de estar reservado.
func (r *Repository) Create(ctx context.Context, p CreateParams) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE items SET status = 'distribuido' WHERE id = $1 AND status = 'reservado'`, p.ItemID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repo.Conflict("Item com ID %s não está reservado para distribuição.", p.ItemID)
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO distributions (id, date, beneficiary_id, employee_id, observations)
            VALUES ($1, $2, $3, $4, $5)`, p.ID, p.Date, p.BeneficiaryID, p.EmployeeID, p.Observations); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `INSERT INTO distribution_items (distribution_id, item_id) VALUES ($1, $2)`, p.ID, p.ItemID)
		return err
	})
}

// Get busca distribuição com partes e itens.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Distribution, error) {
	d, err := scanDistribution(r.db.QueryRow(ctx, selectDistribution+` WHERE d.id = $1`, id))
	if err != nil {
		return nil, err
	}
	list := []Distribution{*d}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List pagina distribuições por data, opcionalmente de um beneficiário.
func (r *Repository) List(ctx context.Context, beneficiaryID *uuid.UUID, opts util.PageOptions) ([]Distribution, int, error) {
	where := ""
	args := []any{}
	if beneficiaryID != nil {
		where = " WHERE d.beneficiary_id = $1"
		args = append(args, *beneficiaryID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM distributions d`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "ASC"
	if opts.Order == util.OrderDESC {
		order = "DESC"
	}
	query := fmt.Sprintf(`%s%s ORDER BY d.date %s, d.id LIMIT $%d OFFSET $%d`, selectDistribution, where, order, len(args)+1, len(args)+2)
	args = append(args, opts.Take, opts.Skip())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	list := []Distribution{}
	for rows.Next() {
		d, err := scanDistribution(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		list = append(list, *d)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateObservations grava novas observações.
func (r *Repository) UpdateObservations(ctx context.Context, id uuid.UUID, observations string) error {
	tag, err := r.db.Exec(ctx, `UPDATE distributions SET observations = $2 WHERE id = $1`, id, observations)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// Delete remove a distribuição; o status dos itens não é revertido.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM distributions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *Repository) loadItems(ctx context.Context, list []Distribution) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(list))
	index := make(map[uuid.UUID]int, len(list))
	for i := range list {
		ids[i] = list[i].ID
		index[list[i].ID] = i
		list[i].Items = []item.Item{}
	}

	rows, err := r.db.Query(ctx, `
        SELECT di.distribution_id, `+item.Columns("i")+`
        FROM distribution_items di
        JOIN items i ON i.id = di.item_id
        WHERE di.distribution_id = ANY($1)
        ORDER BY i.received_date`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var distID uuid.UUID
		it, err := item.Scan(rows, &distID)
		if err != nil {
			return err
		}
		if i, ok := index[distID]; ok {
			list[i].Items = append(list[i].Items, *it)
		}
	}
	return rows.Err()
}

func scanDistribution(row pgx.Row) (*Distribution, error) {
	var (
		d Distribution
		b Party
		e Party
	)
	if err := row.Scan(&d.ID, &d.Date, &d.BeneficiaryID, &d.EmployeeID, &d.Observations, &b.Name, &b.Email, &e.Name, &e.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	b.ID = d.BeneficiaryID
	e.ID = d.EmployeeID
	d.Beneficiary = &b
	d.Employee = &e
	return &d, nil
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/solidarios/api/internal/db"
	"github.com/solidarios/api/internal/util"
)

const userColumns = `id, name, email, password, role, is_active, phone, address, created_at, updated_at`

// CreateUser insere usuário; email duplicado vira ErrConflict.
func (q *Queries) CreateUser(ctx context.Context, p CreateUserParams) (*User, error) {
	query := `
        INSERT INTO users (name, email, password, role, phone, address)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + userColumns

	row := q.db.QueryRow(ctx, query, p.Name, strings.ToLower(p.Email), p.PasswordHash, string(p.Role), p.Phone, p.Address)
	user, err := scanUser(row)
	if err != nil && db.IsUniqueViolation(err) {
		return nil, Conflict("Email %s já cadastrado", p.Email)
	}
	return user, err
}

// GetUserByID busca usuário pelo ID.
func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail busca usuário pelo email normalizado.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// ListUsers devolve a página pedida e o total de registros do filtro.
func (q *Queries) ListUsers(ctx context.Context, filter UserFilter, opts util.PageOptions) ([]User, int, error) {
	where := ""
	args := []any{}
	if filter.Role != nil {
		where = " WHERE role = $1"
		args = append(args, string(*filter.Role))
	}

	var total int
	if err := q.db.QueryRow(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at %s, id LIMIT $%d OFFSET $%d`,
		userColumns, where, orderKeyword(opts.Order), len(args)+1, len(args)+2)
	args = append(args, opts.Take, opts.Skip())

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return users, total, nil
}

// UpdateUser atualiza apenas os campos informados.
func (q *Queries) UpdateUser(ctx context.Context, p UpdateUserParams) (*User, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	add := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Email != nil {
		add("email", strings.ToLower(*p.Email))
	}
	if p.PasswordHash != nil {
		add("password", *p.PasswordHash)
	}
	if p.Role != nil {
		add("role", string(*p.Role))
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}

	if len(setParts) == 0 {
		return q.GetUserByID(ctx, p.ID)
	}

	setParts = append(setParts, "updated_at = now()")
	args = append(args, p.ID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`, strings.Join(setParts, ", "), idx, userColumns)

	user, err := scanUser(q.db.QueryRow(ctx, query, args...))
	if err != nil && db.IsUniqueViolation(err) {
		return nil, Conflict("Email já cadastrado")
	}
	return user, err
}

// UpdateUserPassword grava novo hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := q.db.Exec(ctx, `UPDATE users SET password = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser remove usuário; referências ativas viram ErrConflict.
func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Conflict("Usuário com ID %s possui itens ou distribuições vinculados", id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.Phone, &u.Address, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

func orderKeyword(order string) string {
	if order == util.OrderDESC {
		return "DESC"
	}
	return "ASC"
}

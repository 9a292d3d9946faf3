package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertRefreshToken persiste o hash de um refresh token.
func (q *Queries) InsertRefreshToken(ctx context.Context, userID uuid.UUID, hash string, expiresAt time.Time) error {
	_, err := q.db.Exec(ctx, `
        INSERT INTO refresh_tokens (user_id, token, expires_at)
        VALUES ($1, $2, $3)`, userID, hash, expiresAt)
	return err
}

// GetRefreshTokenByHash busca token pelo hash.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, hash string) (*RefreshToken, error) {
	var t RefreshToken
	err := q.db.QueryRow(ctx, `
        SELECT id, user_id, token, is_revoked, expires_at, created_at, updated_at
        FROM refresh_tokens
        WHERE token = $1`, hash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.IsRevoked, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// RevokeRefreshToken marca o token como revogado. Só uma chamada vence por
// token; as demais (ou token inexistente) recebem ErrNotFound.
func (q *Queries) RevokeRefreshToken(ctx context.Context, hash string) error {
	tag, err := q.db.Exec(ctx, `
        UPDATE refresh_tokens SET is_revoked = true, updated_at = now()
        WHERE token = $1 AND is_revoked = false`, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeUserRefreshTokens revoga todos os tokens ativos do usuário e devolve os hashes.
func (q *Queries) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, `
        UPDATE refresh_tokens SET is_revoked = true, updated_at = now()
        WHERE user_id = $1 AND is_revoked = false
        RETURNING token`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// PurgeRefreshTokens apaga tokens expirados ou revogados antes do corte.
func (q *Queries) PurgeRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `
        DELETE FROM refresh_tokens
        WHERE expires_at < $1 OR (is_revoked = true AND updated_at < $1)`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

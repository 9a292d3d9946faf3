package repo

import "github.com/solidarios/api/internal/db"

// Queries concentra o acesso a usuários e refresh tokens.
type Queries struct {
	db db.DBTX
}

// New cria Queries sobre pool ou transação.
func New(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

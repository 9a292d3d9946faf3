package util

import "github.com/google/uuid"

// NewID gera um UUID v4 para entidades criadas pela aplicação.
func NewID() uuid.UUID {
	return uuid.New()
}

// ParseID converte texto em UUID devolvendo erro de validação amigável.
func ParseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, NewValidationError(field, "identificador inválido")
	}
	return id, nil
}

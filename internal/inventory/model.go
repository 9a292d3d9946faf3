package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Entry é o registro de estoque de um item.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"itemId"`
	Quantity   int       `json:"quantity"`
	Location   *string   `json:"location"`
	AlertLevel *int      `json:"alertLevel"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// LowStock indica quantidade no nível de alerta ou abaixo.
func (e Entry) LowStock() bool {
	return e.AlertLevel != nil && e.Quantity <= *e.AlertLevel
}

// CreateInput cria registro de estoque.
type CreateInput struct {
	ItemID     uuid.UUID `json:"itemId" validate:"required"`
	Quantity   *int      `json:"quantity" validate:"omitempty,gte=0,lte=2147483647"`
	Location   *string   `json:"location" validate:"omitempty,max=100"`
	AlertLevel *int      `json:"alertLevel" validate:"omitempty,gte=0,lte=2147483647"`
}

// UpdateInput altera apenas os campos enviados.
type UpdateInput struct {
	Quantity   *int    `json:"quantity" validate:"omitempty,gte=0,lte=2147483647"`
	Location   *string `json:"location" validate:"omitempty,max=100"`
	AlertLevel *int    `json:"alertLevel" validate:"omitempty,gte=0,lte=2147483647"`
}

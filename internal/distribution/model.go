package distribution

import (
	"time"

	"github.com/google/uuid"

	"github.com/solidarios/api/internal/item"
)

// Party resume beneficiário ou funcionário na resposta.
type Party struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Distribution registra a entrega de itens a um beneficiário.
type Distribution struct {
	ID            uuid.UUID   `json:"id"`
	Date          time.Time   `json:"date"`
	BeneficiaryID uuid.UUID   `json:"beneficiaryId"`
	EmployeeID    uuid.UUID   `json:"employeeId"`
	Observations  *string     `json:"observations"`
	Beneficiary   *Party      `json:"beneficiary,omitempty"`
	Employee      *Party      `json:"employee,omitempty"`
	Items         []item.Item `json:"items"`
}

// CreateInput aprova a entrega de um item reservado.
type CreateInput struct {
	BeneficiaryID uuid.UUID  `json:"beneficiaryId" validate:"required"`
	EmployeeID    *uuid.UUID `json:"employeeId"`
	ItemID        uuid.UUID  `json:"itemId" validate:"required"`
	Observations  *string    `json:"observations" validate:"omitempty,max=1000"`
}

// UpdateInput permite alterar somente as observações.
type UpdateInput struct {
	Observations *string `json:"observations" validate:"omitempty,max=1000"`
}

// CreateParams são os valores persistidos na criação.
type CreateParams struct {
	ID            uuid.UUID
	Date          time.Time
	BeneficiaryID uuid.UUID
	EmployeeID    uuid.UUID
	ItemID        uuid.UUID
	Observations  *string
}

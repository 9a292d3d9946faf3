package item

import (
	"time"

	"github.com/google/uuid"
)

// Type classifica o item doado.
type Type string

const (
	TypeRoupa     Type = "roupa"
	TypeCalcado   Type = "calcado"
	TypeUtensilio Type = "utensilio"
	TypeOutro     Type = "outro"
)

// Status controla o ciclo de vida do item.
type Status string

const (
	StatusDisponivel  Status = "disponivel"
	StatusReservado   Status = "reservado"
	StatusDistribuido Status = "distribuido"
)

// Valid indica status conhecido.
func (s Status) Valid() bool {
	switch s {
	case StatusDisponivel, StatusReservado, StatusDistribuido:
		return true
	}
	return false
}

const (
	// MaxPhotoSize limita cada foto enviada.
	MaxPhotoSize = 5 << 20
	// MaxPhotosPerRequest limita o número de fotos por envio.
	MaxPhotosPerRequest = 5
)

// Item representa uma doação.
type Item struct {
	ID                uuid.UUID  `json:"id"`
	Type              Type       `json:"type"`
	Description       string     `json:"description"`
	ConservationState *string    `json:"conservationState"`
	Size              *string    `json:"size"`
	ReceivedDate      time.Time  `json:"receivedDate"`
	Status            Status     `json:"status"`
	Photos            []string   `json:"photos"`
	DonorID           uuid.UUID  `json:"donorId"`
	CategoryID        *uuid.UUID `json:"categoryId"`
	ReservedDate      *time.Time `json:"reservedDate"`
	ReservedByID      *uuid.UUID `json:"reservedById"`
}

// CreateInput são os campos aceitos na criação.
type CreateInput struct {
	Type              Type       `json:"type" validate:"required,oneof=roupa calcado utensilio outro"`
	Description       string     `json:"description" validate:"required,max=1000"`
	ConservationState *string    `json:"conservationState" validate:"omitempty,max=50"`
	Size              *string    `json:"size" validate:"omitempty,max=20"`
	ReceivedDate      *time.Time `json:"receivedDate"`
	DonorID           *uuid.UUID `json:"donorId"`
	CategoryID        *uuid.UUID `json:"categoryId"`
}

// UpdateInput altera apenas os campos enviados; status muda só pelas transições.
type UpdateInput struct {
	Type              *Type      `json:"type" validate:"omitempty,oneof=roupa calcado utensilio outro"`
	Description       *string    `json:"description" validate:"omitempty,min=1,max=1000"`
	ConservationState *string    `json:"conservationState" validate:"omitempty,max=50"`
	Size              *string    `json:"size" validate:"omitempty,max=20"`
	CategoryID        *uuid.UUID `json:"categoryId"`
}

// Filter restringe listagens.
type Filter struct {
	Status     *Status
	DonorID    *uuid.UUID
	CategoryID *uuid.UUID
}

// Photo é um arquivo recebido via multipart.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

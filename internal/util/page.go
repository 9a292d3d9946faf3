package util

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	OrderASC  = "ASC"
	OrderDESC = "DESC"

	defaultTake = 10
	maxTake     = 50
)

// PageOptions representa page/take/order vindos da query string.
type PageOptions struct {
	Page  int
	Take  int
	Order string
}

// DefaultPageOptions devolve página 1 com 10 registros em ordem ASC.
func DefaultPageOptions() PageOptions {
	return PageOptions{Page: 1, Take: defaultTake, Order: OrderASC}
}

// Skip calcula o OFFSET correspondente.
func (o PageOptions) Skip() int {
	return (o.Page - 1) * o.Take
}

// ParsePageOptions lê page, take e order validando limites.
func ParsePageOptions(values url.Values) (PageOptions, error) {
	opts := DefaultPageOptions()
	verr := &ValidationError{Fields: map[string]string{}}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			verr.Fields["page"] = "deve ser no mínimo 1"
		} else {
			opts.Page = page
		}
	}

	if raw := strings.TrimSpace(values.Get("take")); raw != "" {
		take, err := strconv.Atoi(raw)
		switch {
		case err != nil || take < 1:
			verr.Fields["take"] = "deve ser no mínimo 1"
		case take > maxTake:
			verr.Fields["take"] = "deve ser no máximo 50"
		default:
			opts.Take = take
		}
	}

	if raw := strings.ToUpper(strings.TrimSpace(values.Get("order"))); raw != "" {
		if raw != OrderASC && raw != OrderDESC {
			verr.Fields["order"] = "valor deve ser um de: ASC, DESC"
		} else {
			opts.Order = raw
		}
	}

	if len(verr.Fields) > 0 {
		return opts, verr
	}
	return opts, nil
}

// PageMeta descreve a paginação devolvida ao cliente.
type PageMeta struct {
	Page            int  `json:"page"`
	Take            int  `json:"take"`
	ItemCount       int  `json:"itemCount"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// Page agrupa registros e metadados.
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// NewPage monta a página a partir do total de registros.
func NewPage[T any](data []T, opts PageOptions, itemCount int) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if opts.Take > 0 {
		totalPages = (itemCount + opts.Take - 1) / opts.Take
	}
	return Page[T]{
		Data: data,
		Meta: PageMeta{
			Page:            opts.Page,
			Take:            opts.Take,
			ItemCount:       itemCount,
			TotalPages:      totalPages,
			HasPreviousPage: opts.Page > 1,
			HasNextPage:     opts.Page < totalPages,
		},
	}
}

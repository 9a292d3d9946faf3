package http

import (
	"net/http"

	"github.com/solidarios/api/internal/distribution"
	"github.com/solidarios/api/internal/metrics"
	"github.com/solidarios/api/internal/util"
)

// CreateDistribution aprova a entrega de um item reservado.
func (h *Handler) CreateDistribution(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var payload distribution.CreateInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.distributions.Create(r.Context(), actor, payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	metrics.RecordItemEvent(metrics.EventDistributed)
	WriteJSON(w, http.StatusCreated, "Distribuição registrada com sucesso", d)
}

func (h *Handler) ListDistributions(w http.ResponseWriter, r *http.Request) {
	opts, err := util.ParsePageOptions(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.distributions.List(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Distribuições encontradas", page)
}

// ListDistributionsByBeneficiary pagina entregas de um beneficiário; staff ou o próprio.
func (h *Handler) ListDistributionsByBeneficiary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	opts, err := util.ParsePageOptions(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.distributions.ListByBeneficiary(r.Context(), actor, id, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Distribuições encontradas", page)
}

func (h *Handler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.distributions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Distribuição encontrada", d)
}

// UpdateDistribution altera observações; a permissão é checada no serviço.
func (h *Handler) UpdateDistribution(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var payload distribution.UpdateInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.distributions.Update(r.Context(), actor, id, payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Distribuição atualizada com sucesso", d)
}

// DeleteDistribution remove a distribuição; somente ADMIN.
func (h *Handler) DeleteDistribution(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.distributions.Remove(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Distribuição removida com sucesso", nil)
}

package http

import (
	"net/http"

	"github.com/solidarios/api/internal/inventory"
	"github.com/solidarios/api/internal/util"
)

func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	opts, err := util.ParsePageOptions(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.inventory.List(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Estoque encontrado", page)
}

// LowStock lista registros no nível de alerta ou abaixo.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.inventory.LowStock(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Itens com estoque baixo", entries)
}

func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	entry, err := h.inventory.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Registro de estoque encontrado", entry)
}

func (h *Handler) GetInventoryByItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseIDParam(r, "itemId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	entry, err := h.inventory.GetByItem(r.Context(), itemID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Registro de estoque encontrado", entry)
}

func (h *Handler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	var payload inventory.CreateInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	entry, err := h.inventory.Create(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, "Registro de estoque criado com sucesso", entry)
}

func (h *Handler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var payload inventory.UpdateInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	entry, err := h.inventory.Update(r.Context(), id, payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Registro de estoque atualizado com sucesso", entry)
}

func (h *Handler) DeleteInventory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.inventory.Remove(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Registro de estoque removido com sucesso", nil)
}

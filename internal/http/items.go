package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/solidarios/api/internal/item"
	"github.com/solidarios/api/internal/metrics"
	"github.com/solidarios/api/internal/util"
)

// ListItems pagina itens, com filtro opcional por status.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	var filter item.Filter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := item.Status(strings.ToLower(raw))
		filter.Status = &status
	}
	h.listItems(w, r, filter)
}

// ListItemsByDonor pagina itens de um doador.
func (h *Handler) ListItemsByDonor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.listItems(w, r, item.Filter{DonorID: &id})
}

// ListItemsByCategory pagina itens de uma categoria.
func (h *Handler) ListItemsByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.listItems(w, r, item.Filter{CategoryID: &id})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request, filter item.Filter) {
	opts, err := util.ParsePageOptions(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.items.List(r.Context(), filter, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Itens encontrados", page)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	it, err := h.items.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Item encontrado", it)
}

// CreateItem aceita JSON ou multipart com arquivos em images.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var (
		payload item.CreateInput
		photos  []item.Photo
		err     error
	)
	if isMultipart(r) {
		photos, err = readPhotos(r)
		if err == nil {
			payload, err = createInputFromForm(r)
		}
	} else {
		err = decodeJSON(w, r, &payload)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	it, err := h.items.Create(r.Context(), actor, payload, photos)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	metrics.RecordItemEvent(metrics.EventDonated)
	WriteJSON(w, http.StatusCreated, "Item criado com sucesso", it)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var payload item.UpdateInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	it, err := h.items.Update(r.Context(), actor, id, payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Item atualizado com sucesso", it)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.items.Remove(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Item removido com sucesso", nil)
}

// AddItemPhotos anexa fotos enviadas via multipart.
func (h *Handler) AddItemPhotos(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !isMultipart(r) {
		writeServiceError(w, r, util.NewValidationError("images", "envie as imagens como multipart/form-data"))
		return
	}
	photos, err := readPhotos(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	it, err := h.items.AddPhotos(r.Context(), actor, id, photos)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Fotos adicionadas com sucesso", it)
}

// RemoveItemPhoto retira a foto informada em photoUrl.
func (h *Handler) RemoveItemPhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var payload struct {
		PhotoURL string `json:"photoUrl"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeServiceError(w, r, err)
		return
	}
	it, err := h.items.RemovePhoto(r.Context(), actor, id, payload.PhotoURL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, "Foto removida com sucesso", it)
}

// ReserveItem reserva o item para o beneficiário da rota.
func (h *Handler) ReserveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	it, err := h.items.Reserve(r.Context(), actor, id, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	metrics.RecordItemEvent(metrics.EventReserved)
	WriteJSON(w, http.StatusOK, "Item reservado com sucesso", it)
}

// ReleaseItem devolve item reservado para disponivel.
func (h *Handler) ReleaseItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	it, err := h.items.Release(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	metrics.RecordItemEvent(metrics.EventReleased)
	WriteJSON(w, http.StatusOK, "Reserva liberada com sucesso", it)
}

func createInputFromForm(r *http.Request) (item.CreateInput, error) {
	in := item.CreateInput{
		Type:              item.Type(strings.ToLower(strings.TrimSpace(r.FormValue("type")))),
		Description:       r.FormValue("description"),
		ConservationState: formOptional(r, "conservationState"),
		Size:              formOptional(r, "size"),
	}

	var err error
	if in.DonorID, err = formUUID(r, "donorId"); err != nil {
		return in, err
	}
	if in.CategoryID, err = formUUID(r, "categoryId"); err != nil {
		return in, err
	}
	if raw := formOptional(r, "receivedDate"); raw != nil {
		received, err := parseDate(*raw)
		if err != nil {
			return in, util.NewValidationError("receivedDate", "data inválida")
		}
		in.ReceivedDate = &received
	}
	return in, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

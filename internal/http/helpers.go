package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/solidarios/api/internal/http/middleware"
	"github.com/solidarios/api/internal/item"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/util"
)

const maxJSONBody = 1 << 20

// decodeJSON lê o corpo rejeitando campos desconhecidos.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return util.NewValidationError("body", "corpo vazio")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return util.NewValidationError("body", "corpo excede o tamanho máximo")
		}
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return util.NewValidationError(strings.Trim(field, `"`), "campo não permitido")
		}
		return util.NewValidationError("body", "JSON inválido")
	}
	return nil
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return util.ParseID(chi.URLParam(r, name), name)
}

// actorFrom devolve o usuário autenticado; rotas privadas sempre o têm.
func actorFrom(w http.ResponseWriter, r *http.Request) (repo.Actor, bool) {
	actor, ok := httpmiddleware.GetActor(r.Context())
	if !ok {
		WriteError(w, r, http.StatusUnauthorized, "AUTH", "token ausente", nil)
	}
	return actor, ok
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

// readPhotos lê os arquivos do campo images.
func readPhotos(r *http.Request) ([]item.Photo, error) {
	limit := int64(item.MaxPhotosPerRequest*item.MaxPhotoSize) + maxJSONBody
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, util.NewValidationError("images", "dados multipart inválidos")
	}
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) > item.MaxPhotosPerRequest {
		return nil, util.NewValidationError("images", fmt.Sprintf("máximo de %d imagens por envio", item.MaxPhotosPerRequest))
	}

	photos := make([]item.Photo, 0, len(headers))
	for _, header := range headers {
		data, contentType, err := readMultipartFile(header, item.MaxPhotoSize)
		if err != nil {
			return nil, err
		}
		photos = append(photos, item.Photo{Filename: header.Filename, ContentType: contentType, Data: data})
	}
	return photos, nil
}

func readMultipartFile(header *multipart.FileHeader, limit int64) ([]byte, string, error) {
	file, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("abrir arquivo: %w", err)
	}
	defer file.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(file, limit+1)); err != nil {
		return nil, "", fmt.Errorf("ler arquivo: %w", err)
	}
	if int64(buf.Len()) > limit {
		return nil, "", util.NewValidationError("images", "cada imagem deve ter no máximo 5MB")
	}

	contentType := header.Header.Get("Content-Type")
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(buf.Bytes())
	}
	return buf.Bytes(), contentType, nil
}

func formOptional(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}

func formUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := formOptional(r, key)
	if raw == nil {
		return nil, nil
	}
	id, err := util.ParseID(*raw, key)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

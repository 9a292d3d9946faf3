package item

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/storage"
	"github.com/solidarios/api/internal/util"
)

type repository interface {
	Create(ctx context.Context, it Item) (*Item, error)
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, filter Filter, opts util.PageOptions) ([]Item, int, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reserve(ctx context.Context, id, userID uuid.UUID, at time.Time) (*Item, error)
	Release(ctx context.Context, id uuid.UUID) (*Item, error)
	AppendPhotos(ctx context.Context, id uuid.UUID, urls []string) (*Item, error)
	RemovePhoto(ctx context.Context, id uuid.UUID, url string) (*Item, error)
}

// UserLookup resolve usuários para validar papéis.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// Service concentra as regras de itens e fotos.
type Service struct {
	repo   repository
	users  UserLookup
	store  storage.Store
	logger zerolog.Logger
}

// NewService cria o serviço de itens.
func NewService(r *Repository, users UserLookup, store storage.Store) *Service {
	if store == nil {
		store = storage.NoopStore{}
	}
	return &Service{repo: r, users: users, store: store, logger: log.With().Str("component", "items").Logger()}
}

// Get busca item pelo ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := s.repo.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound(id)
	}
	return it, err
}

// List pagina itens pelo filtro.
func (s *Service) List(ctx context.Context, filter Filter, opts util.PageOptions) (util.Page[Item], error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return util.Page[Item]{}, util.NewValidationError("status", "valor deve ser um de: disponivel, reservado, distribuido")
	}
	items, total, err := s.repo.List(ctx, filter, opts)
	if err != nil {
		return util.Page[Item]{}, err
	}
	return util.NewPage(items, opts, total), nil
}

// Create cadastra doação; DOADOR sempre doa em nome próprio.
func (s *Service) Create(ctx context.Context, actor repo.Actor, in CreateInput, photos []Photo) (*Item, error) {
	in.Description = util.SanitizeText(in.Description)
	in.ConservationState = util.SanitizeOptional(in.ConservationState)
	in.Size = util.SanitizeOptional(in.Size)
	if err := util.Validate(in); err != nil {
		return nil, err
	}
	if err := validatePhotos(photos); err != nil {
		return nil, err
	}

	donorID := actor.ID
	if actor.Role.IsStaff() && in.DonorID != nil {
		donorID = *in.DonorID
	}
	if _, err := s.findUser(ctx, donorID); err != nil {
		return nil, err
	}

	it := Item{
		ID:                util.NewID(),
		Type:              in.Type,
		Description:       in.Description,
		ConservationState: in.ConservationState,
		Size:              in.Size,
		ReceivedDate:      util.Now(),
		Status:            StatusDisponivel,
		DonorID:           donorID,
		CategoryID:        in.CategoryID,
	}
	if in.ReceivedDate != nil {
		it.ReceivedDate = in.ReceivedDate.UTC()
	}

	urls, err := s.upload(ctx, it.ID, photos)
	if err != nil {
		return nil, err
	}
	it.Photos = urls

	created, err := s.repo.Create(ctx, it)
	if err != nil {
		s.discard(ctx, urls)
		return nil, err
	}

	s.logger.Info().Str("item_id", created.ID.String()).Str("donor_id", donorID.String()).Int("photos", len(urls)).Msg("item cadastrado")
	return created, nil
}

// Update altera dados descritivos.
func (s *Service) Update(ctx context.Context, actor repo.Actor, id uuid.UUID, in UpdateInput) (*Item, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	if in.Description != nil {
		clean := util.SanitizeText(*in.Description)
		in.Description = &clean
	}
	in.ConservationState = util.SanitizeOptional(in.ConservationState)
	in.Size = util.SanitizeOptional(in.Size)
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	it, err := s.repo.Update(ctx, id, in)
	if errors.Is(err, repo.ErrNotFound) && !isDetailed(err) {
		return nil, notFound(id)
	}
	return it, err
}

// Remove apaga o item e suas fotos.
func (s *Service) Remove(ctx context.Context, actor repo.Actor, id uuid.UUID) error {
	it, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(id)
		}
		return err
	}
	s.discard(ctx, it.Photos)
	return nil
}

// Reserve reserva o item para um beneficiário.
func (s *Service) Reserve(ctx context.Context, actor repo.Actor, id, userID uuid.UUID) (*Item, error) {
	if !actor.Role.IsStaff() && actor.ID != userID {
		return nil, repo.Forbidden("Você só pode solicitar itens para a sua própria conta.")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != repo.RoleBeneficiario {
		return nil, repo.Conflict("Usuário com ID %s não é um beneficiário.", userID)
	}

	it, err := s.repo.Reserve(ctx, id, userID, util.Now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}

	s.logger.Info().Str("item_id", id.String()).Str("user_id", userID.String()).Msg("item reservado")
	return it, nil
}

// Release cancela a reserva, devolvendo o item para disponivel.
func (s *Service) Release(ctx context.Context, actor repo.Actor, id uuid.UUID) (*Item, error) {
	if !actor.Role.IsStaff() {
		return nil, repo.Forbidden("Você não tem permissão para liberar reservas.")
	}
	it, err := s.repo.Release(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	s.logger.Info().Str("item_id", id.String()).Msg("reserva liberada")
	return it, nil
}

// AddPhotos envia fotos e as anexa ao item.
func (s *Service) AddPhotos(ctx context.Context, actor repo.Actor, id uuid.UUID, photos []Photo) (*Item, error) {
	if len(photos) == 0 {
		return nil, util.NewValidationError("images", "envie ao menos uma imagem")
	}
	if err := validatePhotos(photos); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	urls, err := s.upload(ctx, id, photos)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.AppendPhotos(ctx, id, urls)
	if err != nil {
		s.discard(ctx, urls)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return updated, nil
}

// RemovePhoto retira uma foto do item e do storage.
func (s *Service) RemovePhoto(ctx context.Context, actor repo.Actor, id uuid.UUID, photoURL string) (*Item, error) {
	photoURL = strings.TrimSpace(photoURL)
	if photoURL == "" {
		return nil, util.NewValidationError("photoUrl", "campo obrigatório")
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.RemovePhoto(ctx, id, photoURL)
	switch {
	case errors.Is(err, ErrPhotoNotInItem):
		return nil, repo.NotFound("Foto não encontrada no item %s", id)
	case errors.Is(err, repo.ErrNotFound):
		return nil, notFound(id)
	case err != nil:
		return nil, err
	}
	s.discard(ctx, []string{photoURL})
	return updated, nil
}

// owned garante que o ator é staff ou o doador do item.
func (s *Service) owned(ctx context.Context, actor repo.Actor, id uuid.UUID) (*Item, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role.IsStaff() || (actor.Role == repo.RoleDoador && it.DonorID == actor.ID) {
		return it, nil
	}
	return nil, repo.Forbidden("Você não tem permissão para alterar este item.")
}

func (s *Service) findUser(ctx context.Context, id uuid.UUID) (*repo.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, repo.NotFound("Usuário com ID %s não encontrado", id)
	}
	return user, err
}

func (s *Service) upload(ctx context.Context, itemID uuid.UUID, photos []Photo) ([]string, error) {
	urls := make([]string, 0, len(photos))
	base := time.Now().UnixNano()
	for i, p := range photos {
		key := fmt.Sprintf("items/%s/%d%s", itemID, base+int64(i), extensionFor(p))
		res, err := s.store.Upload(ctx, storage.UploadInput{
			Key:          key,
			Body:         p.Data,
			ContentType:  p.ContentType,
			CacheControl: "public, max-age=31536000",
		})
		if err != nil {
			s.discard(ctx, urls)
			return nil, fmt.Errorf("upload da foto %s: %w", p.Filename, err)
		}
		urls = append(urls, res.URL)
	}
	return urls, nil
}

// discard remove objetos sem interromper a operação principal.
func (s *Service) discard(ctx context.Context, urls []string) {
	for _, u := range urls {
		key, ok := s.store.KeyFromURL(u)
		if !ok {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("falha ao remover foto")
		}
	}
}

func validatePhotos(photos []Photo) error {
	if len(photos) > MaxPhotosPerRequest {
		return util.NewValidationError("images", fmt.Sprintf("máximo de %d imagens por envio", MaxPhotosPerRequest))
	}
	for i := range photos {
		p := &photos[i]
		if len(p.Data) == 0 {
			return util.NewValidationError("images", "arquivo vazio")
		}
		if len(p.Data) > MaxPhotoSize {
			return util.NewValidationError("images", "cada imagem deve ter no máximo 5MB")
		}
		detected := http.DetectContentType(p.Data)
		if !strings.HasPrefix(detected, "image/") {
			return util.NewValidationError("images", "apenas imagens são permitidas")
		}
		p.ContentType = detected
	}
	return nil
}

func extensionFor(p Photo) string {
	if ext := strings.ToLower(filepath.Ext(p.Filename)); ext != "" {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(p.ContentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func notFound(id uuid.UUID) error {
	return repo.NotFound("Item com ID %s não encontrado", id)
}

// isDetailed indica erro já com mensagem própria.
func isDetailed(err error) bool {
	var e *repo.Error
	return errors.As(err, &e)
}

package storage

import (
	"context"
	"errors"
)

// ErrNotConfigured indica que nenhum backend de storage foi configurado.
var ErrNotConfigured = errors.New("storage: backend não configurado")

// NoopStore devolve erro em uploads e ignora remoções.
type NoopStore struct{}

// Upload sempre retorna erro, sinalizando que o recurso não está disponível.
func (NoopStore) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	return nil, ErrNotConfigured
}

// Delete não faz nada.
func (NoopStore) Delete(ctx context.Context, key string) error {
	return nil
}

// KeyFromURL nunca reconhece URLs.
func (NoopStore) KeyFromURL(rawURL string) (string, bool) {
	return "", false
}

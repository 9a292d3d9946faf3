package storage

import "context"

// UploadInput representa uma operação de upload simples.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// UploadResult descreve o artefato persistido.
type UploadResult struct {
	Key  string
	URL  string
	ETag string
}

// Store guarda e remove as fotos dos itens.
type Store interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL devolve a chave do objeto se a URL pertence a este bucket.
	KeyFromURL(rawURL string) (string, bool)
}

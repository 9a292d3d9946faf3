package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const refreshTokenBytes = 32

// ErrInvalidRefresh cobre token desconhecido, revogado, expirado ou reutilizado.
var ErrInvalidRefresh = errors.New("refresh token inválido")

// GenerateRefreshToken devolve o token opaco entregue ao cliente e o hash
// que vai para refresh_tokens e para o Redis.
func GenerateRefreshToken() (string, string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	return raw, HashRefreshToken(raw), nil
}

// HashRefreshToken produz hash SHA-256 base64; só o hash é persistido.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RefreshRedisKey é a chave refresh:solidarios:<hash> com o estado da sessão.
func RefreshRedisKey(hash string) string {
	return "refresh:" + Audience + ":" + hash
}

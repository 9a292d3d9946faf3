package repo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrConflict sinaliza estado incompatível ou duplicidade.
	ErrConflict = errors.New("conflito de estado")
	// ErrForbidden sinaliza papel sem permissão para a operação.
	ErrForbidden = errors.New("acesso negado")
)

// Error carrega mensagem para o cliente mantendo a categoria via errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound formata erro da categoria ErrNotFound.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict formata erro da categoria ErrConflict.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden formata erro da categoria ErrForbidden.
func Forbidden(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Msg: fmt.Sprintf(format, args...)}
}

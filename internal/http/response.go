package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data      any    `json:"data"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data      any        `json:"data"`
	Status    int        `json:"status"`
	Message   string     `json:"message"`
	Error     *ErrorBody `json:"error"`
	Path      string     `json:"path"`
	Timestamp string     `json:"timestamp"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{
		Data:      data,
		Status:    status,
		Message:   message,
		Timestamp: timestamp(),
	})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:      nil,
		Status:    status,
		Message:   message,
		Error:     &ErrorBody{Code: code, Message: message, Details: details},
		Path:      r.URL.Path,
		Timestamp: timestamp(),
	})
}

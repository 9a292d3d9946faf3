package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// writeError replica o envelope de erro do pacote http; middleware não pode importá-lo.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":    nil,
		"status":  status,
		"message": message,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
		"path":      r.URL.Path,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// statusFor сопоставляет доменные ошибки с HTTP-кодами
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrDeliveryFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

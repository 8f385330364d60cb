package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Falha ao serializar resposta: %v", err)
	}
}

// respondError maps the service error taxonomy onto HTTP statuses and the
// legacy {success:false, message} body.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrInvariantViolation):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrExternalServiceDegraded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("❌ Erro interno: %v", err)
	}
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": err.Error(),
	})
}

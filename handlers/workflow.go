package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/antoniovieira1/api-solicitacao-servico/workflow"
)

// ExecuteWorkflowAction - POST /api/service-orders/{id}/status
// Applies one workflow action to the order and returns the updated view.
func ExecuteWorkflowAction(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var action workflow.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	view, summary, err := Engine.Execute(id, action)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": summary,
		"order":   view,
	})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/antoniovieira1/api-solicitacao-servico/config"
	"github.com/antoniovieira1/api-solicitacao-servico/models"
	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"
)

// ListRoles - GET /api/roles
func ListRoles(w http.ResponseWriter, r *http.Request) {
	var assignments []models.RoleAssignment
	if err := config.DB.Order("role, email ASC").Find(&assignments).Error; err != nil {
		respondError(w, errs.NewPersistenceError("list role_assignments", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"roles":   assignments,
	})
}

type assignRoleRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AssignRole - POST /api/roles
func AssignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Role == "" {
		respondError(w, errs.NewInvalidInputError("email", "email e funcao sao obrigatorios"))
		return
	}
	if !models.IsAssignableRole(req.Role) {
		respondError(w, errs.NewInvalidInputError("role", "funcao invalida"))
		return
	}

	assignment := models.RoleAssignment{Email: email, Role: req.Role}
	if err := config.DB.Create(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondJSON(w, http.StatusConflict, map[string]interface{}{
				"success": false,
				"message": "este email ja possui esta funcao",
			})
			return
		}
		respondError(w, errs.NewPersistenceError("create role_assignment", err))
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"message":    "funcao atribuida",
		"assignment": assignment,
	})
}

// DeleteRole - DELETE /api/roles/{id}
func DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, errs.NewInvalidInputError("id", "identificador invalido"))
		return
	}
	res := config.DB.Delete(&models.RoleAssignment{}, id)
	if res.Error != nil {
		respondError(w, errs.NewPersistenceError("delete role_assignment", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, errs.NewObjectNotFoundError("id", id))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "associacao removida",
	})
}

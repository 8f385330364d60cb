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

// ListEquipments - GET /api/equipments
func ListEquipments(w http.ResponseWriter, r *http.Request) {
	var equipments []models.Equipment
	if err := config.DB.Order("name ASC").Find(&equipments).Error; err != nil {
		respondError(w, errs.NewPersistenceError("list equipments", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"equipments": equipments,
	})
}

// CreateEquipment - POST /api/equipments
func CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, errs.NewInvalidInputError("name", "nome do equipamento e obrigatorio"))
		return
	}

	equipment := models.Equipment{Name: name}
	if err := config.DB.Create(&equipment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondJSON(w, http.StatusConflict, map[string]interface{}{
				"success": false,
				"message": "equipamento ja cadastrado",
			})
			return
		}
		respondError(w, errs.NewPersistenceError("create equipment", err))
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "equipamento cadastrado",
		"equipment": equipment,
	})
}

// UpdateEquipment - PUT /api/equipments/{id}
func UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, errs.NewInvalidInputError("id", "identificador invalido"))
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, errs.NewInvalidInputError("name", "nome do equipamento e obrigatorio"))
		return
	}

	res := config.DB.Model(&models.Equipment{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			respondJSON(w, http.StatusConflict, map[string]interface{}{
				"success": false,
				"message": "equipamento ja cadastrado",
			})
			return
		}
		respondError(w, errs.NewPersistenceError("update equipment", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, errs.NewObjectNotFoundError("id", id))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "equipamento atualizado",
	})
}

// DeleteEquipment - DELETE /api/equipments/{id}
func DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, errs.NewInvalidInputError("id", "identificador invalido"))
		return
	}
	res := config.DB.Delete(&models.Equipment{}, id)
	if res.Error != nil {
		respondError(w, errs.NewPersistenceError("delete equipment", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, errs.NewObjectNotFoundError("id", id))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "equipamento removido",
	})
}

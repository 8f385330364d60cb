package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/antoniovieira1/api-solicitacao-servico/config"
	"github.com/antoniovieira1/api-solicitacao-servico/models"
	"github.com/antoniovieira1/api-solicitacao-servico/notify"
	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"
	"github.com/antoniovieira1/api-solicitacao-servico/repository"
)

type createOrderRequest struct {
	Sector         string  `json:"sector"`
	Equipment      string  `json:"equipment"`
	Location       string  `json:"location"`
	Service        string  `json:"service"`
	Observation    *string `json:"observation"`
	RequesterEmail string  `json:"requester_email"`
}

func (req *createOrderRequest) validate() error {
	for name, value := range map[string]string{
		"sector":          req.Sector,
		"equipment":       req.Equipment,
		"location":        req.Location,
		"service":         req.Service,
		"requester_email": req.RequesterEmail,
	} {
		if strings.TrimSpace(value) == "" {
			return errs.NewInvalidInputError(name, "campo obrigatorio")
		}
	}
	return nil
}

// CreateServiceOrder - POST /api/service-orders
// Opens a new order and tells the PCM team there is work to triage.
func CreateServiceOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	order := &models.ServiceOrder{
		Sector:             strings.TrimSpace(req.Sector),
		Equipment:          strings.TrimSpace(req.Equipment),
		Location:           strings.TrimSpace(req.Location),
		ServiceDescription: strings.TrimSpace(req.Service),
		Observation:        req.Observation,
		RequesterEmail:     strings.TrimSpace(strings.ToLower(req.RequesterEmail)),
	}
	if err := repository.NewOrderRepository(config.DB).Create(order); err != nil {
		respondError(w, err)
		return
	}
	log.Printf("📝 Ordem %d aberta por %s", order.ID, order.RequesterEmail)

	Dispatcher.Dispatch(notify.TemplateOrderCreated, order.ID,
		notify.RoleRecipients(config.DB, models.RolePcm))

	view, err := Assembler.Assemble(order.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "ordem de servico criada",
		"order":   view,
	})
}

// ListServiceOrders - GET /api/service-orders
func ListServiceOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := Assembler.Summaries()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  summaries,
	})
}

// GetServiceOrder - GET /api/service-orders/{id}
func GetServiceOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := Assembler.Assemble(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   view,
	})
}

func orderID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewInvalidInputError("id", "identificador de ordem invalido")
	}
	return id, nil
}

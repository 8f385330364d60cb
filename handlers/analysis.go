package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/antoniovieira1/api-solicitacao-servico/config"
	"github.com/antoniovieira1/api-solicitacao-servico/models"
	"github.com/antoniovieira1/api-solicitacao-servico/notify"
	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"
	"github.com/antoniovieira1/api-solicitacao-servico/repository"
)

type pcmAnalysisRequest struct {
	PcmComments           *string    `json:"pcmComments"`
	RequiresLabEvaluation *bool      `json:"requiresEvaluation"`
	RequiresCipa          *bool      `json:"requires_cipa"`
	ScheduledStartDate    *time.Time `json:"scheduledStartDate"`
	ScheduledEndDate      *time.Time `json:"scheduledEndDate"`
	TotalDowntime         *string    `json:"totalDowntime"`
	AnalystEmail          string     `json:"analystEmail"`

	Priority        *string `json:"priority"`
	MaintenanceType *string `json:"maintenanceType"`
	ImpactLevel     *string `json:"impactLevel"`
	Component       *string `json:"component"`
}

// SavePcmAnalysis - PUT /api/service-orders/{id}/pcm-analysis-data
// Stores the analyst's triage: the stage record, the order classification
// and the first status hop out of open. Saving again overwrites the
// supplied fields and keeps the rest.
func SavePcmAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req pcmAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.AnalystEmail == "" {
		respondError(w, errs.NewInvalidInputError("analystEmail", "email do analista PCM e obrigatorio"))
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		respondError(w, errs.NewPersistenceError("begin pcm analysis transaction", tx.Error))
		return
	}

	orders := repository.NewOrderRepository(tx)
	order, err := orders.GetByIDLocked(id)
	if err != nil {
		tx.Rollback()
		respondError(w, err)
		return
	}
	if models.IsTerminalStatus(order.Status) {
		tx.Rollback()
		respondError(w, errs.NewInvalidInputError("id", "ordem encerrada nao aceita analise"))
		return
	}

	now := time.Now()
	err = repository.NewPcmAnalysisStore(tx).Upsert(id, repository.PcmAnalysisUpsert{
		PcmComments:           req.PcmComments,
		RequiresLabEvaluation: req.RequiresLabEvaluation,
		RequiresCipa:          req.RequiresCipa,
		ScheduledStartDate:    req.ScheduledStartDate,
		ScheduledEndDate:      req.ScheduledEndDate,
		TotalDowntime:         req.TotalDowntime,
		AnalystEmail:          &req.AnalystEmail,
		AnalysisDate:          &now,
	})
	if err != nil {
		tx.Rollback()
		respondError(w, err)
		return
	}

	err = orders.UpdateClassification(id, repository.OrderClassification{
		Priority:        req.Priority,
		MaintenanceType: req.MaintenanceType,
		ImpactLevel:     req.ImpactLevel,
		Component:       req.Component,
	})
	if err != nil {
		tx.Rollback()
		respondError(w, err)
		return
	}

	if order.Status == models.StatusOpen {
		if err := orders.UpdateStatus(id, models.StatusUnderPcmReview); err != nil {
			tx.Rollback()
			respondError(w, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondError(w, errs.NewPersistenceError("commit pcm analysis transaction", err))
		return
	}

	// An already-approved order means the safety team is waiting on this
	// data; tell them it changed.
	if order.OssmNumber != nil {
		Dispatcher.Dispatch(notify.TemplateSafetyReviewRequested, id,
			notify.RoleRecipients(config.DB, models.RoleCipa, models.RoleSafety))
	}

	view, err := Assembler.Assemble(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "analise PCM salva",
		"order":   view,
	})
}

type cipaAnalysisRequest struct {
	RequiresWorkPermit *bool   `json:"requires_pet_pt"`
	WorkPermitID       *string `json:"pet_pt_id"`
	Comments           *string `json:"cipa_comments"`
	AnalystEmail       string  `json:"cipa_analyst_email"`
}

// SaveCipaAnalysis - POST /api/service-orders/{id}/cipa-analysis
// Stores the safety team's risk assessment. The accept/reject decision
// goes through the status endpoint; this only records the assessment and
// forwards the order to whoever works next.
func SaveCipaAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req cipaAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.RequiresWorkPermit == nil || req.AnalystEmail == "" {
		respondError(w, errs.NewInvalidInputError("requires_pet_pt",
			"requires_pet_pt e cipa_analyst_email sao obrigatorios"))
		return
	}

	order, err := repository.NewOrderRepository(config.DB).GetByID(id)
	if err != nil {
		respondError(w, err)
		return
	}

	// A permit id only makes sense when a permit is required.
	permitID := req.WorkPermitID
	if !*req.RequiresWorkPermit {
		permitID = nil
	}
	now := time.Now()
	err = repository.NewSafetyAnalysisStore(config.DB).Upsert(id, repository.SafetyAnalysisUpsert{
		RequiresWorkPermit: req.RequiresWorkPermit,
		WorkPermitID:       permitID,
		Comments:           req.Comments,
		AnalystEmail:       &req.AnalystEmail,
		AnalysisDate:       &now,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	if order.OssmNumber != nil {
		pcm, err := repository.NewPcmAnalysisStore(config.DB).GetByOrderID(id)
		if err == nil && pcm != nil {
			if pcm.LabRequired() {
				Dispatcher.Dispatch(notify.TemplateLabEvaluationRequested, id,
					notify.RoleRecipients(config.DB, models.RoleLaboratory))
			} else {
				Dispatcher.Dispatch(notify.TemplateExecutionReady, id,
					notify.RoleRecipients(config.DB, models.RolePcm))
			}
		}
	}

	view, err := Assembler.Assemble(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "avaliacao de seguranca salva",
		"order":   view,
	})
}

// Package workflow implements the service-order state machine. Every
// status transition goes through Engine.Execute, which runs the whole
// transition (stage writes, sequence assignment, status change) in one
// database transaction and notifies the next responsible department after
// commit.
package workflow

import (
	"fmt"
	"time"

	"github.com/antoniovieira1/api-solicitacao-servico/models"
	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"
)

// ActionType identifies a workflow action.
type ActionType string

const (
	ActionApprovePcm         ActionType = "approve_pcm"
	ActionRejectPcm          ActionType = "reject_pcm"
	ActionApproveCipa        ActionType = "approve_cipa"
	ActionRejectCipa         ActionType = "reject_cipa"
	ActionSubmitLabFirstEval ActionType = "submit_lab_first_eval"
	ActionSubmitPcmExecution ActionType = "submit_pcm_execution"
	ActionSubmitLabReeval    ActionType = "submit_lab_reevaluation"
)

// allowedSourceStates lists the statuses an action may fire from. An order
// in any other status rejects the action as invalid input.
var allowedSourceStates = map[ActionType][]string{
	ActionApprovePcm:         {models.StatusOpen, models.StatusUnderPcmReview},
	ActionRejectPcm:          {models.StatusOpen, models.StatusUnderPcmReview},
	ActionApproveCipa:        {models.StatusPendingSafetyReview},
	ActionRejectCipa:         {models.StatusPendingSafetyReview},
	ActionSubmitLabFirstEval: {models.StatusUnderReview},
	ActionSubmitPcmExecution: {models.StatusPendingExecution},
	ActionSubmitLabReeval:    {models.StatusPendingLabReevaluation},
}

// UserAction identifies who performed an action and when.
type UserAction struct {
	UserID   string     `json:"userId"`
	Role     string     `json:"role,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Comments *string    `json:"comments,omitempty"`
}

// PcmApprovalData is the approve_pcm payload. The analysis fields are
// optional here because PCM usually fills them earlier through the
// data-fill endpoint; whatever arrives is merged into the same row.
type PcmApprovalData struct {
	PcmComments           *string    `json:"pcmComments,omitempty"`
	RequiresLabEvaluation *bool      `json:"requiresEvaluation,omitempty"`
	RequiresCipa          *bool      `json:"requires_cipa,omitempty"`
	ScheduledStartDate    *time.Time `json:"scheduledStartDate,omitempty"`
	ScheduledEndDate      *time.Time `json:"scheduledEndDate,omitempty"`
	TotalDowntime         *string    `json:"totalDowntime,omitempty"`
	AnalystEmail          *string    `json:"analystEmail,omitempty"`
	AnalysisDate          *time.Time `json:"analysisDate,omitempty"`
	Approved              *bool      `json:"approved,omitempty"`
	Justification         *string    `json:"justification,omitempty"`
}

// SafetyValidationData is the approve_cipa payload.
type SafetyValidationData struct {
	Approved        *bool   `json:"approved,omitempty"`
	ApprovedReason  *string `json:"reasonapp,omitempty"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
}

// LaboratoryEvaluationData is the submit_lab_first_eval payload.
type LaboratoryEvaluationData struct {
	ReleasedForUse          *bool   `json:"liberado_uso,omitempty"`
	RequiresRequalification *bool   `json:"requiresRequalification,omitempty"`
	Comments                *string `json:"comments,omitempty"`
}

// PcmExecutionDetails is the submit_pcm_execution payload.
type PcmExecutionDetails struct {
	Description           *string `json:"execution_description,omitempty"`
	ResponsibleName       *string `json:"execution_responsible_name,omitempty"`
	PurchaseRequested     *bool   `json:"houve_solicitacao_compra,omitempty"`
	PurchaseRequestNumber *string `json:"numero_solicitacao_compra,omitempty"`
}

// LabReevaluationDetails is the submit_lab_reevaluation payload.
type LabReevaluationDetails struct {
	Comments       *string `json:"comments,omitempty"`
	ReleasedForUse *bool   `json:"releasedForUse,omitempty"`
}

// Action is the request body of the status endpoint: one action type, the
// acting user, and at most one stage payload.
type Action struct {
	Type ActionType `json:"actionType"`
	User UserAction `json:"user"`

	PcmApproval      *PcmApprovalData          `json:"pcmApprovalData,omitempty"`
	SafetyValidation *SafetyValidationData     `json:"safetyValidationData,omitempty"`
	LabEvaluation    *LaboratoryEvaluationData `json:"laboratoryEvaluationData,omitempty"`
	PcmExecution     *PcmExecutionDetails      `json:"pcmExecutionDetails,omitempty"`
	LabReevaluation  *LabReevaluationDetails   `json:"labReevaluationDetails,omitempty"`
}

// Validate checks the action is well formed before any database work.
func (a *Action) Validate() error {
	if _, ok := allowedSourceStates[a.Type]; !ok {
		return errs.NewInvalidInputError("actionType", fmt.Sprintf("unknown action type %q", a.Type))
	}
	if a.User.UserID == "" {
		return errs.NewInvalidInputError("user.userId", "acting user is required")
	}
	switch a.Type {
	case ActionApprovePcm:
		if a.PcmApproval == nil {
			return errs.NewInvalidInputError("pcmApprovalData", "payload is required for approve_pcm")
		}
	case ActionApproveCipa:
		if a.SafetyValidation == nil {
			return errs.NewInvalidInputError("safetyValidationData", "payload is required for approve_cipa")
		}
	case ActionSubmitLabFirstEval:
		if a.LabEvaluation == nil {
			return errs.NewInvalidInputError("laboratoryEvaluationData", "payload is required for submit_lab_first_eval")
		}
	case ActionSubmitPcmExecution:
		if a.PcmExecution == nil {
			return errs.NewInvalidInputError("pcmExecutionDetails", "payload is required for submit_pcm_execution")
		}
	case ActionSubmitLabReeval:
		if a.LabReevaluation == nil {
			return errs.NewInvalidInputError("labReevaluationDetails", "payload is required for submit_lab_reevaluation")
		}
	}
	return nil
}

// actionAllowedFrom reports whether the action may fire from status.
func actionAllowedFrom(t ActionType, status string) bool {
	for _, s := range allowedSourceStates[t] {
		if s == status {
			return true
		}
	}
	return false
}

// actionTime returns the action's timestamp, defaulting to now.
func (a *Action) actionTime() time.Time {
	if a.User.Date != nil {
		return *a.User.Date
	}
	return time.Now()
}

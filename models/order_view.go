package models

import "time"

// OrderView is the denormalized read model returned by the API: the order
// fields plus one nested block per workflow stage that has data, with
// identity emails resolved to display names. The JSON keys mirror what the
// frontend consumed from the legacy backend.
type OrderView struct {
	ID              int64     `json:"id"`
	OssmNumber      *int64    `json:"ossmNumber"`
	Sector          string    `json:"sector"`
	Equipment       string    `json:"equipment"`
	Location        string    `json:"location"`
	Service         string    `json:"service"`
	Component       string    `json:"component"`
	Priority        string    `json:"priority"`
	MaintenanceType string    `json:"maintenanceType"`
	ImpactLevel     *string   `json:"impactLevel"`
	Observation     *string   `json:"observation"`
	RequesterEmail  string    `json:"requester_email"`
	RequesterName   string    `json:"requesterName"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// PCM data-fill fields are flattened onto the top level.
	PcmComments           *string    `json:"pcmComments"`
	RequiresLabEvaluation bool       `json:"requiresEvaluation"`
	RequiresCipa          bool       `json:"requires_cipa"`
	ScheduledStartDate    *time.Time `json:"scheduledStartDate"`
	ScheduledEndDate      *time.Time `json:"scheduledEndDate"`
	TotalDowntime         *string    `json:"totalDowntime"`
	AnalystEmail          *string    `json:"analystEmail"`
	AnalysisDate          *time.Time `json:"analysisDate"`

	PcmApproval      *PcmApprovalView      `json:"pcmApproval"`
	SafetyAnalysis   *SafetyAnalysisView   `json:"cipaAnalysisData"`
	SafetyValidation *SafetyValidationView `json:"safetyValidation"`
	LabAnalysis      *LabAnalysisView      `json:"labAnalysisData"`
	PcmExecution     *PcmExecutionView     `json:"pcmExecutionData"`
	LabReevaluation  *LabReevaluationView  `json:"labReevaluationData"`
}

// PcmApprovalView is the approve/reject half of the PCM stage.
type PcmApprovalView struct {
	Approved      bool       `json:"approved"`
	Justification *string    `json:"justification"`
	UserName      string     `json:"userName"`
	Date          *time.Time `json:"date"`
}

// SafetyAnalysisView is the CIPA risk-assessment half of the safety stage.
type SafetyAnalysisView struct {
	ID                 int64      `json:"id"`
	RequiresWorkPermit bool       `json:"requires_pet_pt"`
	WorkPermitID       *string    `json:"pet_pt_id"`
	Comments           *string    `json:"comments"`
	AnalystEmail       *string    `json:"analyst_email"`
	AnalystName        string     `json:"analystName"`
	AnalysisDate       *time.Time `json:"analysis_date"`
}

// SafetyValidationView is the CIPA accept/reject half of the safety stage.
// The approver here is resolved independently of the analyst above.
type SafetyValidationView struct {
	Approved            bool       `json:"approved"`
	Comments            *string    `json:"comments"`
	UserName            string     `json:"userName"`
	ApprovedReason      *string    `json:"reasonapp"`
	RejectionReason     *string    `json:"rejectionReason"`
	Date                *time.Time `json:"date"`
	WorkPermitValidated bool       `json:"petPtValidated"`
}

// LabAnalysisView is the laboratory's first evaluation.
type LabAnalysisView struct {
	ID                      int64      `json:"id"`
	ServiceOrderID          int64      `json:"service_order_id"`
	ReleasedForUse          bool       `json:"liberado_uso"`
	RequiresRequalification bool       `json:"requalificacao"`
	Comments                *string    `json:"comments"`
	EvaluatorEmail          *string    `json:"lab_approval_email"`
	UserName                string     `json:"userName"`
	AnalysisDate            *time.Time `json:"analysis_date"`
}

// PcmExecutionView is the execution report.
type PcmExecutionView struct {
	ID                    int64      `json:"id"`
	ServiceOrderID        int64      `json:"service_order_id"`
	Description           *string    `json:"execution_description"`
	ResponsibleName       *string    `json:"execution_responsible_name"`
	ExecutedByEmail       *string    `json:"executed_by_email"`
	UserName              string     `json:"userName"`
	ExecutionDate         *time.Time `json:"execution_date"`
	PurchaseRequested     bool       `json:"houve_solicitacao_compra"`
	PurchaseRequestNumber *string    `json:"numero_solicitacao_compra"`
}

// LabReevaluationView is the post-execution laboratory check.
type LabReevaluationView struct {
	ID             int64      `json:"id"`
	ServiceOrderID int64      `json:"service_order_id"`
	Comments       *string    `json:"comments"`
	EvaluatorEmail *string    `json:"evaluator_email"`
	UserName       string     `json:"userName"`
	EvaluationDate *time.Time `json:"evaluation_date"`
	ReleasedForUse bool       `json:"releasedForUse"`
}

// OrderSummary is the list-view projection: the raw order row plus the
// requester display name.
type OrderSummary struct {
	ServiceOrder
	RequesterName string `json:"requesterName"`
}

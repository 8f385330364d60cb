package repository

import (
	"errors"
	"time"

	"github.com/antoniovieira1/api-solicitacao-servico/models"
	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The stage stores all share the same contract: one row per order, keyed by
// service_order_id, written through a column-wise merge upsert. A nil field
// in an upsert struct means "not supplied, keep the stored value", which is
// what lets the two-phase stages (PCM fill-then-approve, CIPA
// analyze-then-act) share a row without the second phase erasing the first.

// mergeUpsert inserts the record or, on conflict with an existing row for
// the order, applies only the supplied column assignments.
func mergeUpsert(db *gorm.DB, op string, record interface{}, set map[string]interface{}) error {
	oc := clause.OnConflict{Columns: []clause.Column{{Name: "service_order_id"}}}
	if len(set) == 0 {
		oc.DoNothing = true
	} else {
		set["updated_at"] = time.Now()
		oc.DoUpdates = clause.Assignments(set)
	}
	if err := db.Clauses(oc).Create(record).Error; err != nil {
		return errs.NewPersistenceError(op, err)
	}
	return nil
}

// getByOrderID loads dest by order id, mapping absence to (found=false).
func getByOrderID(db *gorm.DB, op string, orderID int64, dest interface{}) (bool, error) {
	err := db.First(dest, "service_order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errs.NewPersistenceError(op, err)
	}
	return true, nil
}

// PcmAnalysisStore persists the PCM analysis stage.
type PcmAnalysisStore struct {
	db *gorm.DB
}

// NewPcmAnalysisStore creates a PcmAnalysisStore bound to db.
func NewPcmAnalysisStore(db *gorm.DB) *PcmAnalysisStore {
	return &PcmAnalysisStore{db: db}
}

// PcmAnalysisUpsert carries the supplied PCM analysis columns.
type PcmAnalysisUpsert struct {
	PcmComments           *string
	RequiresLabEvaluation *bool
	RequiresCipa          *bool
	ScheduledStartDate    *time.Time
	ScheduledEndDate      *time.Time
	TotalDowntime         *string
	AnalystEmail          *string
	AnalysisDate          *time.Time
	ApprovalStatus        *bool
	ApprovalJustification *string
	ApproverEmail         *string
	ApprovalDate          *time.Time
}

// Upsert merges the supplied columns into the order's PCM analysis row.
func (s *PcmAnalysisStore) Upsert(orderID int64, u PcmAnalysisUpsert) error {
	rec := models.PcmAnalysisRecord{ServiceOrderID: orderID}
	set := map[string]interface{}{}
	if u.PcmComments != nil {
		rec.PcmComments = u.PcmComments
		set["pcm_comments"] = *u.PcmComments
	}
	if u.RequiresLabEvaluation != nil {
		rec.RequiresLabEvaluation = u.RequiresLabEvaluation
		set["requires_lab_evaluation"] = *u.RequiresLabEvaluation
	}
	if u.RequiresCipa != nil {
		rec.RequiresCipa = u.RequiresCipa
		set["requires_cipa"] = *u.RequiresCipa
	}
	if u.ScheduledStartDate != nil {
		rec.ScheduledStartDate = u.ScheduledStartDate
		set["scheduled_start_date"] = *u.ScheduledStartDate
	}
	if u.ScheduledEndDate != nil {
		rec.ScheduledEndDate = u.ScheduledEndDate
		set["scheduled_end_date"] = *u.ScheduledEndDate
	}
	if u.TotalDowntime != nil {
		rec.TotalDowntime = u.TotalDowntime
		set["total_downtime"] = *u.TotalDowntime
	}
	if u.AnalystEmail != nil {
		rec.AnalystEmail = u.AnalystEmail
		set["analyst_email"] = *u.AnalystEmail
	}
	if u.AnalysisDate != nil {
		rec.AnalysisDate = u.AnalysisDate
		set["analysis_date"] = *u.AnalysisDate
	}
	if u.ApprovalStatus != nil {
		rec.ApprovalStatus = u.ApprovalStatus
		set["pcm_approval_status"] = *u.ApprovalStatus
	}
	if u.ApprovalJustification != nil {
		rec.ApprovalJustification = u.ApprovalJustification
		set["pcm_approval_justification"] = *u.ApprovalJustification
	}
	if u.ApproverEmail != nil {
		rec.ApproverEmail = u.ApproverEmail
		set["pcm_approver_email"] = *u.ApproverEmail
	}
	if u.ApprovalDate != nil {
		rec.ApprovalDate = u.ApprovalDate
		set["pcm_approval_date"] = *u.ApprovalDate
	}
	return mergeUpsert(s.db, "upsert pcm_analysis", &rec, set)
}

// GetByOrderID returns the order's PCM analysis row, or nil when the stage
// has not been filled yet.
func (s *PcmAnalysisStore) GetByOrderID(orderID int64) (*models.PcmAnalysisRecord, error) {
	var rec models.PcmAnalysisRecord
	found, err := getByOrderID(s.db, "load pcm_analysis", orderID, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// SafetyAnalysisStore persists the CIPA/safety stage.
type SafetyAnalysisStore struct {
	db *gorm.DB
}

// NewSafetyAnalysisStore creates a SafetyAnalysisStore bound to db.
func NewSafetyAnalysisStore(db *gorm.DB) *SafetyAnalysisStore {
	return &SafetyAnalysisStore{db: db}
}

// SafetyAnalysisUpsert carries the supplied safety analysis columns.
type SafetyAnalysisUpsert struct {
	RequiresWorkPermit *bool
	WorkPermitID       *string
	Comments           *string
	AnalystEmail       *string
	AnalysisDate       *time.Time
	Approved           *bool
	ApproverEmail      *string
	ApprovalDate       *time.Time
	ApprovedReason     *string
	RejectionReason    *string
}

// Upsert merges the supplied columns into the order's safety row. When the
// action phase lands (Approved non-nil), the reason column on the losing
// side is cleared so approved-reason and rejection-reason stay mutually
// exclusive.
func (s *SafetyAnalysisStore) Upsert(orderID int64, u SafetyAnalysisUpsert) error {
	rec := models.SafetyAnalysisRecord{ServiceOrderID: orderID}
	set := map[string]interface{}{}
	if u.RequiresWorkPermit != nil {
		rec.RequiresWorkPermit = u.RequiresWorkPermit
		set["requires_pet_pt"] = *u.RequiresWorkPermit
	}
	if u.WorkPermitID != nil {
		rec.WorkPermitID = u.WorkPermitID
		set["pet_pt_id"] = *u.WorkPermitID
	}
	if u.Comments != nil {
		rec.Comments = u.Comments
		set["cipa_comments"] = *u.Comments
	}
	if u.AnalystEmail != nil {
		rec.AnalystEmail = u.AnalystEmail
		set["cipa_analyst_email"] = *u.AnalystEmail
	}
	if u.AnalysisDate != nil {
		rec.AnalysisDate = u.AnalysisDate
		set["cipa_analysis_date"] = *u.AnalysisDate
	}
	if u.Approved != nil {
		rec.Approved = u.Approved
		set["cipa_approved"] = *u.Approved
		if *u.Approved {
			rec.ApprovedReason = u.ApprovedReason
			set["cipa_approved_reason"] = deref(u.ApprovedReason)
			set["cipa_rejection_reason"] = nil
		} else {
			rec.RejectionReason = u.RejectionReason
			set["cipa_rejection_reason"] = deref(u.RejectionReason)
			set["cipa_approved_reason"] = nil
		}
	}
	if u.ApproverEmail != nil {
		rec.ApproverEmail = u.ApproverEmail
		set["cipa_approver_email"] = *u.ApproverEmail
	}
	if u.ApprovalDate != nil {
		rec.ApprovalDate = u.ApprovalDate
		set["cipa_approval_date"] = *u.ApprovalDate
	}
	return mergeUpsert(s.db, "upsert cipa_analysis", &rec, set)
}

// GetByOrderID returns the order's safety row, or nil when absent.
func (s *SafetyAnalysisStore) GetByOrderID(orderID int64) (*models.SafetyAnalysisRecord, error) {
	var rec models.SafetyAnalysisRecord
	found, err := getByOrderID(s.db, "load cipa_analysis", orderID, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// LabAnalysisStore persists the laboratory first-evaluation stage.
type LabAnalysisStore struct {
	db *gorm.DB
}

// NewLabAnalysisStore creates a LabAnalysisStore bound to db.
func NewLabAnalysisStore(db *gorm.DB) *LabAnalysisStore {
	return &LabAnalysisStore{db: db}
}

// LabAnalysisUpsert carries the supplied lab analysis columns.
type LabAnalysisUpsert struct {
	ReleasedForUse          *bool
	RequiresRequalification *bool
	Comments                *string
	EvaluatorEmail          *string
	AnalysisDate            *time.Time
}

// Upsert merges the supplied columns into the order's lab analysis row.
func (s *LabAnalysisStore) Upsert(orderID int64, u LabAnalysisUpsert) error {
	rec := models.LabAnalysisRecord{ServiceOrderID: orderID}
	set := map[string]interface{}{}
	if u.ReleasedForUse != nil {
		rec.ReleasedForUse = u.ReleasedForUse
		set["liberado_uso"] = *u.ReleasedForUse
	}
	if u.RequiresRequalification != nil {
		rec.RequiresRequalification = u.RequiresRequalification
		set["requalificacao"] = *u.RequiresRequalification
	}
	if u.Comments != nil {
		rec.Comments = u.Comments
		set["comments"] = *u.Comments
	}
	if u.EvaluatorEmail != nil {
		rec.EvaluatorEmail = u.EvaluatorEmail
		set["lab_approval_email"] = *u.EvaluatorEmail
	}
	if u.AnalysisDate != nil {
		rec.AnalysisDate = u.AnalysisDate
		set["analysis_date"] = *u.AnalysisDate
	}
	return mergeUpsert(s.db, "upsert lab_analysis", &rec, set)
}

// GetByOrderID returns the order's lab analysis row, or nil when absent.
func (s *LabAnalysisStore) GetByOrderID(orderID int64) (*models.LabAnalysisRecord, error) {
	var rec models.LabAnalysisRecord
	found, err := getByOrderID(s.db, "load lab_analysis", orderID, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// PcmExecutionStore persists the execution stage.
type PcmExecutionStore struct {
	db *gorm.DB
}

// NewPcmExecutionStore creates a PcmExecutionStore bound to db.
func NewPcmExecutionStore(db *gorm.DB) *PcmExecutionStore {
	return &PcmExecutionStore{db: db}
}

// PcmExecutionUpsert carries the supplied execution columns.
type PcmExecutionUpsert struct {
	Description           *string
	ResponsibleName       *string
	ExecutedByEmail       *string
	ExecutionDate         *time.Time
	PurchaseRequested     *bool
	PurchaseRequestNumber *string
}

// Upsert merges the supplied columns into the order's execution row.
func (s *PcmExecutionStore) Upsert(orderID int64, u PcmExecutionUpsert) error {
	rec := models.PcmExecutionRecord{ServiceOrderID: orderID}
	set := map[string]interface{}{}
	if u.Description != nil {
		rec.Description = u.Description
		set["execution_description"] = *u.Description
	}
	if u.ResponsibleName != nil {
		rec.ResponsibleName = u.ResponsibleName
		set["execution_responsible_name"] = *u.ResponsibleName
	}
	if u.ExecutedByEmail != nil {
		rec.ExecutedByEmail = u.ExecutedByEmail
		set["executed_by_email"] = *u.ExecutedByEmail
	}
	if u.ExecutionDate != nil {
		rec.ExecutionDate = u.ExecutionDate
		set["execution_date"] = *u.ExecutionDate
	}
	if u.PurchaseRequested != nil {
		rec.PurchaseRequested = u.PurchaseRequested
		set["houve_solicitacao_compra"] = *u.PurchaseRequested
	}
	if u.PurchaseRequestNumber != nil {
		rec.PurchaseRequestNumber = u.PurchaseRequestNumber
		set["numero_solicitacao_compra"] = *u.PurchaseRequestNumber
	}
	return mergeUpsert(s.db, "upsert pcm_execution", &rec, set)
}

// GetByOrderID returns the order's execution row, or nil when absent.
func (s *PcmExecutionStore) GetByOrderID(orderID int64) (*models.PcmExecutionRecord, error) {
	var rec models.PcmExecutionRecord
	found, err := getByOrderID(s.db, "load pcm_execution", orderID, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// LabReevaluationStore persists the post-execution laboratory stage.
type LabReevaluationStore struct {
	db *gorm.DB
}

// NewLabReevaluationStore creates a LabReevaluationStore bound to db.
func NewLabReevaluationStore(db *gorm.DB) *LabReevaluationStore {
	return &LabReevaluationStore{db: db}
}

// LabReevaluationUpsert carries the supplied re-evaluation columns.
type LabReevaluationUpsert struct {
	Comments       *string
	EvaluatorEmail *string
	EvaluationDate *time.Time
	ReleasedForUse *bool
}

// Upsert merges the supplied columns into the order's re-evaluation row.
func (s *LabReevaluationStore) Upsert(orderID int64, u LabReevaluationUpsert) error {
	rec := models.LabReevaluationRecord{ServiceOrderID: orderID}
	set := map[string]interface{}{}
	if u.Comments != nil {
		rec.Comments = u.Comments
		set["comments"] = *u.Comments
	}
	if u.EvaluatorEmail != nil {
		rec.EvaluatorEmail = u.EvaluatorEmail
		set["evaluator_email"] = *u.EvaluatorEmail
	}
	if u.EvaluationDate != nil {
		rec.EvaluationDate = u.EvaluationDate
		set["evaluation_date"] = *u.EvaluationDate
	}
	if u.ReleasedForUse != nil {
		rec.ReleasedForUse = u.ReleasedForUse
		set["liberado_uso"] = *u.ReleasedForUse
	}
	return mergeUpsert(s.db, "upsert lab_reevaluation", &rec, set)
}

// GetByOrderID returns the order's re-evaluation row, or nil when absent.
func (s *LabReevaluationStore) GetByOrderID(orderID int64) (*models.LabReevaluationRecord, error) {
	var rec models.LabReevaluationRecord
	found, err := getByOrderID(s.db, "load lab_reevaluation", orderID, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// deref returns nil for a nil string pointer, otherwise its value. Used
// where a column must be written even when the caller supplied nothing.
func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

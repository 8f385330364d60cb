package models

import "time"

// PcmAnalysisRecord holds the PCM stage data for one order. Two logical
// phases share the row: the analyst's data fill (comments, flags, schedule)
// and the later approve/reject decision. Upserts are column-wise merges so
// the second phase never erases the first.
type PcmAnalysisRecord struct {
	ID             int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ServiceOrderID int64 `gorm:"column:service_order_id;uniqueIndex;not null" json:"service_order_id"`

	// Data-fill phase.
	PcmComments           *string    `gorm:"column:pcm_comments;type:text" json:"pcmComments,omitempty"`
	RequiresLabEvaluation *bool      `gorm:"column:requires_lab_evaluation" json:"requiresEvaluation,omitempty"`
	RequiresCipa          *bool      `gorm:"column:requires_cipa" json:"requires_cipa,omitempty"`
	ScheduledStartDate    *time.Time `gorm:"column:scheduled_start_date" json:"scheduledStartDate,omitempty"`
	ScheduledEndDate      *time.Time `gorm:"column:scheduled_end_date" json:"scheduledEndDate,omitempty"`
	TotalDowntime         *string    `gorm:"column:total_downtime;size:100" json:"totalDowntime,omitempty"`
	AnalystEmail          *string    `gorm:"column:analyst_email;size:255" json:"analystEmail,omitempty"`
	AnalysisDate          *time.Time `gorm:"column:analysis_date" json:"analysisDate,omitempty"`

	// Approval phase.
	ApprovalStatus        *bool      `gorm:"column:pcm_approval_status" json:"pcm_approval_status,omitempty"`
	ApprovalJustification *string    `gorm:"column:pcm_approval_justification;type:text" json:"pcm_approval_justification,omitempty"`
	ApproverEmail         *string    `gorm:"column:pcm_approver_email;size:255" json:"pcm_approver_email,omitempty"`
	ApprovalDate          *time.Time `gorm:"column:pcm_approval_date" json:"pcm_approval_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for PcmAnalysisRecord
func (PcmAnalysisRecord) TableName() string {
	return "pcm_analysis"
}

// CipaRequired reads the tri-state safety flag: an unset value means the
// analyst has not ruled safety review out yet, so it counts as required.
func (r *PcmAnalysisRecord) CipaRequired() bool {
	return r == nil || r.RequiresCipa == nil || *r.RequiresCipa
}

// LabRequired reports whether the analyst flagged the order for laboratory
// evaluation. Unset reads as false.
func (r *PcmAnalysisRecord) LabRequired() bool {
	return r != nil && r.RequiresLabEvaluation != nil && *r.RequiresLabEvaluation
}

package models

import "time"

// SafetyAnalysisRecord holds the CIPA/safety stage data for one order.
// The risk assessment (work permit, comments, analyst) is filled first; the
// accept/reject action lands later in the same row. The analyst and the
// approver are distinct identities and may be different people.
type SafetyAnalysisRecord struct {
	ID             int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ServiceOrderID int64 `gorm:"column:service_order_id;uniqueIndex;not null" json:"service_order_id"`

	// Risk-assessment phase.
	RequiresWorkPermit *bool      `gorm:"column:requires_pet_pt" json:"requires_pet_pt,omitempty"`
	WorkPermitID       *string    `gorm:"column:pet_pt_id;size:100" json:"pet_pt_id,omitempty"`
	Comments           *string    `gorm:"column:cipa_comments;type:text" json:"comments,omitempty"`
	AnalystEmail       *string    `gorm:"column:cipa_analyst_email;size:255" json:"analyst_email,omitempty"`
	AnalysisDate       *time.Time `gorm:"column:cipa_analysis_date" json:"analysis_date,omitempty"`

	// Action phase. Exactly one of ApprovedReason/RejectionReason is set,
	// selected by the Approved flag.
	Approved        *bool      `gorm:"column:cipa_approved" json:"cipa_approved,omitempty"`
	ApproverEmail   *string    `gorm:"column:cipa_approver_email;size:255" json:"cipa_approver_email,omitempty"`
	ApprovalDate    *time.Time `gorm:"column:cipa_approval_date" json:"cipa_approval_date,omitempty"`
	ApprovedReason  *string    `gorm:"column:cipa_approved_reason;type:text" json:"cipa_approved_reason,omitempty"`
	RejectionReason *string    `gorm:"column:cipa_rejection_reason;type:text" json:"cipa_rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for SafetyAnalysisRecord
func (SafetyAnalysisRecord) TableName() string {
	return "cipa_analysis"
}

package models

import "time"

// LabAnalysisRecord is the laboratory's first evaluation of the equipment.
// The requalification flag does not change the order status here; it only
// decides whether the order returns to the lab after execution.
type LabAnalysisRecord struct {
	ID             int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ServiceOrderID int64 `gorm:"column:service_order_id;uniqueIndex;not null" json:"service_order_id"`

	ReleasedForUse          *bool      `gorm:"column:liberado_uso" json:"liberado_uso,omitempty"`
	RequiresRequalification *bool      `gorm:"column:requalificacao" json:"requalificacao,omitempty"`
	Comments                *string    `gorm:"type:text" json:"comments,omitempty"`
	EvaluatorEmail          *string    `gorm:"column:lab_approval_email;size:255" json:"lab_approval_email,omitempty"`
	AnalysisDate            *time.Time `gorm:"column:analysis_date" json:"analysis_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for LabAnalysisRecord
func (LabAnalysisRecord) TableName() string {
	return "lab_analysis"
}

// RequalificationRequired reads the flag with unset counting as false.
func (r *LabAnalysisRecord) RequalificationRequired() bool {
	return r != nil && r.RequiresRequalification != nil && *r.RequiresRequalification
}

// LabReevaluationRecord is the laboratory's post-execution check, the final
// safety gate before closure.
type LabReevaluationRecord struct {
	ID             int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ServiceOrderID int64 `gorm:"column:service_order_id;uniqueIndex;not null" json:"service_order_id"`

	Comments       *string    `gorm:"type:text" json:"comments,omitempty"`
	EvaluatorEmail *string    `gorm:"column:evaluator_email;size:255" json:"evaluator_email,omitempty"`
	EvaluationDate *time.Time `gorm:"column:evaluation_date" json:"evaluation_date,omitempty"`
	ReleasedForUse *bool      `gorm:"column:liberado_uso" json:"releasedForUse,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for LabReevaluationRecord
func (LabReevaluationRecord) TableName() string {
	return "lab_reevaluation"
}

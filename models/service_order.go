package models

import "time"

// Service order status tokens, persisted as strings. The lifecycle is
// driven exclusively by the workflow engine; nothing else writes status.
const (
	StatusOpen                   = "open"
	StatusUnderPcmReview         = "under_pcm_review"
	StatusUnderReview            = "under_review"
	StatusPendingSafetyReview    = "pending_safety_review"
	StatusRejected               = "rejected"
	StatusPendingExecution       = "pending_execution"
	StatusPendingLabReevaluation = "pending_lab_reevaluation"
	StatusClosed                 = "closed"
)

// Defaults applied at creation time; the PCM team classifies the order later.
const ClassificationToDefine = "to_define"

// IsTerminalStatus reports whether no further workflow action may touch the order.
func IsTerminalStatus(status string) bool {
	return status == StatusClosed || status == StatusRejected
}

// ServiceOrder is a maintenance request moving through the approval workflow.
// The internal id is assigned at creation; the externally visible OSSM number
// only exists once the PCM team approves the request, and is never reused.
type ServiceOrder struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OssmNumber *int64 `gorm:"column:ossm_number;uniqueIndex" json:"ossmNumber,omitempty"`

	Sector             string  `gorm:"size:100;not null" json:"sector"`
	Equipment          string  `gorm:"size:150;not null" json:"equipment"`
	Location           string  `gorm:"size:150;not null" json:"location"`
	ServiceDescription string  `gorm:"type:text;not null" json:"service"`
	Component          string  `gorm:"size:150" json:"component"`
	Priority           string  `gorm:"size:50;not null" json:"priority"`
	MaintenanceType    string  `gorm:"size:50;not null" json:"maintenanceType"`
	ImpactLevel        *string `gorm:"size:50" json:"impactLevel,omitempty"`
	Observation        *string `gorm:"type:text" json:"observation,omitempty"`

	RequesterEmail string `gorm:"size:255;not null;index" json:"requester_email"`
	Status         string `gorm:"size:50;not null;index" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for ServiceOrder
func (ServiceOrder) TableName() string {
	return "service_orders"
}

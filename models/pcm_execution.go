package models

import "time"

// PcmExecutionRecord documents the executed maintenance work for one order.
type PcmExecutionRecord struct {
	ID             int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ServiceOrderID int64 `gorm:"column:service_order_id;uniqueIndex;not null" json:"service_order_id"`

	Description           *string    `gorm:"column:execution_description;type:text" json:"execution_description,omitempty"`
	ResponsibleName       *string    `gorm:"column:execution_responsible_name;size:255" json:"execution_responsible_name,omitempty"`
	ExecutedByEmail       *string    `gorm:"column:executed_by_email;size:255" json:"executed_by_email,omitempty"`
	ExecutionDate         *time.Time `gorm:"column:execution_date" json:"execution_date,omitempty"`
	PurchaseRequested     *bool      `gorm:"column:houve_solicitacao_compra" json:"houve_solicitacao_compra,omitempty"`
	PurchaseRequestNumber *string    `gorm:"column:numero_solicitacao_compra;size:100" json:"numero_solicitacao_compra,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for PcmExecutionRecord
func (PcmExecutionRecord) TableName() string {
	return "pcm_execution"
}

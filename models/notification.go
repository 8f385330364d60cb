package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification delivery status.
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// Notification is the persisted audit row for one outbound dispatch attempt.
// Delivery itself is fire-and-forget; this row records what was attempted
// and how it ended.
type Notification struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Template       string    `gorm:"size:100;not null" json:"template"`
	ServiceOrderID int64     `gorm:"not null;index" json:"service_order_id"`
	Recipients     string    `gorm:"type:text;not null" json:"recipients"`
	Status         string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Error          string    `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns the row ID so the model works on any dialect.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// MarkAsSent flags the notification as delivered.
func (n *Notification) MarkAsSent() {
	n.Status = NotificationStatusSent
}

// MarkAsFailed flags the notification as undeliverable and keeps the cause.
func (n *Notification) MarkAsFailed(err error) {
	n.Status = NotificationStatusFailed
	if err != nil {
		n.Error = err.Error()
	}
}

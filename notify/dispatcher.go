package notify

import (
	"log"
	"strings"

	"github.com/antoniovieira1/api-solicitacao-servico/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dispatcher is the post-commit side of the workflow: it records an audit
// row and hands the notification to the channels on a separate goroutine.
// Callers fire and forget; nothing here can fail a committed transition.
type Dispatcher struct {
	db       *gorm.DB
	notifier Notifier
}

// NewDispatcher creates a Dispatcher writing audit rows through db and
// delivering through notifier.
func NewDispatcher(db *gorm.DB, notifier Notifier) *Dispatcher {
	return &Dispatcher{db: db, notifier: notifier}
}

// Dispatch records and asynchronously delivers one notification. Returns
// immediately; delivery outcome only shows up in logs and the audit row.
func (d *Dispatcher) Dispatch(template string, orderID int64, recipients []string) {
	if len(recipients) == 0 {
		log.Printf("⚠️  no recipients for template %s on order %d, skipping", template, orderID)
		return
	}

	audit := models.Notification{
		Template:       template,
		ServiceOrderID: orderID,
		Recipients:     strings.Join(recipients, ","),
		Status:         models.NotificationStatusPending,
	}
	if err := d.db.Create(&audit).Error; err != nil {
		// The audit row is bookkeeping; delivery still goes ahead.
		log.Printf("❌ failed to record notification audit row: %v", err)
	}

	go d.deliver(audit, template, orderID, recipients)
}

func (d *Dispatcher) deliver(audit models.Notification, template string, orderID int64, recipients []string) {
	if err := d.notifier.Notify(template, orderID, recipients); err != nil {
		log.Printf("❌ notification delivery failed (template %s, order %d): %v", template, orderID, err)
		audit.MarkAsFailed(err)
	} else {
		audit.MarkAsSent()
	}
	if audit.ID != uuid.Nil {
		if err := d.db.Save(&audit).Error; err != nil {
			log.Printf("❌ failed to update notification audit row: %v", err)
		}
	}
}

// RoleRecipients resolves the emails holding any of the given roles.
func RoleRecipients(db *gorm.DB, roles ...string) []string {
	var emails []string
	if err := db.Model(&models.RoleAssignment{}).
		Where("role IN ?", roles).
		Distinct().
		Pluck("email", &emails).Error; err != nil {
		log.Printf("⚠️  failed to resolve recipients for roles %v: %v", roles, err)
		return nil
	}
	return emails
}

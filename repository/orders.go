// Package repository wraps all database access for service orders and the
// per-stage workflow records. Repositories are bound to a *gorm.DB, which
// may be a live transaction; the workflow engine constructs them on its tx
// so every write in a transition shares one commit-or-rollback boundary.
package repository

import (
	"errors"
	"time"

	"github.com/antoniovieira1/api-solicitacao-servico/models"
	"github.com/antoniovieira1/api-solicitacao-servico/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository provides CRUD access to service orders.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an OrderRepository bound to db.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order with server-assigned defaults: status open,
// classification fields left for PCM to define.
func (r *OrderRepository) Create(order *models.ServiceOrder) error {
	if order.Status == "" {
		order.Status = models.StatusOpen
	}
	if order.Priority == "" {
		order.Priority = models.ClassificationToDefine
	}
	if order.MaintenanceType == "" {
		order.MaintenanceType = models.ClassificationToDefine
	}
	if err := r.db.Create(order).Error; err != nil {
		return errs.NewPersistenceError("create service_order", err)
	}
	return nil
}

// GetByID loads one order.
func (r *OrderRepository) GetByID(id int64) (*models.ServiceOrder, error) {
	return r.get(id, false)
}

// GetByIDLocked loads one order holding a row lock for the rest of the
// transaction, serializing concurrent workflow actions on the same order.
func (r *OrderRepository) GetByIDLocked(id int64) (*models.ServiceOrder, error) {
	return r.get(id, true)
}

func (r *OrderRepository) get(id int64, locked bool) (*models.ServiceOrder, error) {
	tx := r.db
	if locked {
		tx = withRowLock(tx)
	}
	var order models.ServiceOrder
	err := tx.First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("serviceOrderId", id)
	}
	if err != nil {
		return nil, errs.NewPersistenceError("load service_order", err)
	}
	return &order, nil
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll() ([]models.ServiceOrder, error) {
	var orders []models.ServiceOrder
	if err := r.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, errs.NewPersistenceError("list service_orders", err)
	}
	return orders, nil
}

// UpdateStatus writes the new workflow status and bumps updated_at.
func (r *OrderRepository) UpdateStatus(id int64, status string) error {
	res := r.db.Model(&models.ServiceOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return errs.NewPersistenceError("update service_order status", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("serviceOrderId", id)
	}
	return nil
}

// OrderClassification carries the PCM-editable order fields; nil fields
// keep their stored value.
type OrderClassification struct {
	Priority        *string
	MaintenanceType *string
	ImpactLevel     *string
	Component       *string
}

// UpdateClassification applies the provided classification fields.
func (r *OrderRepository) UpdateClassification(id int64, c OrderClassification) error {
	set := map[string]interface{}{}
	if c.Priority != nil {
		set["priority"] = *c.Priority
	}
	if c.MaintenanceType != nil {
		set["maintenance_type"] = *c.MaintenanceType
	}
	if c.ImpactLevel != nil {
		set["impact_level"] = *c.ImpactLevel
	}
	if c.Component != nil {
		set["component"] = *c.Component
	}
	if len(set) == 0 {
		return nil
	}
	set["updated_at"] = time.Now()
	if err := r.db.Model(&models.ServiceOrder{}).Where("id = ?", id).Updates(set).Error; err != nil {
		return errs.NewPersistenceError("update service_order classification", err)
	}
	return nil
}

// ossmSequenceLock keys the advisory lock serializing OSSM assignment on
// postgres, where concurrent transactions would otherwise compute the same
// next number from the same snapshot.
const ossmSequenceLock = 7501

// AssignOssmNumber gives the order the next sequential OSSM number, unless
// it already has one, and returns the number now on the row. The assignment
// is one compare-and-swap update computing COALESCE(MAX)+1 in place, guarded
// by "ossm_number IS NULL" so a number already on the row is never replaced.
// On postgres an advisory transaction lock serializes concurrent approvals;
// the unique index on ossm_number backstops the invariant.
func (r *OrderRepository) AssignOssmNumber(id int64) (int64, error) {
	if r.db.Dialector.Name() == "postgres" {
		if err := r.db.Exec("SELECT pg_advisory_xact_lock(?)", ossmSequenceLock).Error; err != nil {
			return 0, errs.NewPersistenceError("lock ossm sequence", err)
		}
	}

	res := r.db.Exec(
		"UPDATE service_orders SET ossm_number = (SELECT COALESCE(MAX(ossm_number), 0) + 1 FROM service_orders), updated_at = CURRENT_TIMESTAMP WHERE id = ? AND ossm_number IS NULL",
		id,
	)
	if res.Error != nil {
		return 0, errs.NewPersistenceError("assign ossm_number", res.Error)
	}

	order, err := r.GetByID(id)
	if err != nil {
		return 0, err
	}
	if order.OssmNumber == nil {
		return 0, errs.NewPersistenceError("assign ossm_number", errors.New("number still unset after assignment"))
	}
	return *order.OssmNumber, nil
}

// withRowLock adds FOR UPDATE on dialects that support it. SQLite (used by
// the test suite) serializes writers on its own.
func withRowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

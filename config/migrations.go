package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/antoniovieira1/api-solicitacao-servico/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250610_create_order_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.ServiceOrder{}, &models.PcmAnalysisRecord{},
					&models.SafetyAnalysisRecord{}, &models.LabAnalysisRecord{},
					&models.PcmExecutionRecord{}, &models.LabReevaluationRecord{})
			},
		},
		{
			ID: "20250610_create_access_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.RoleAssignment{}, &models.Equipment{})
			},
		},
		{
			ID: "20250702_create_notification_audit",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Notification{})
			},
		},
	})
	return m.Migrate()
}

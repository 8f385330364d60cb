package config

import (
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/antoniovieira1/api-solicitacao-servico/models"
)

// SeedRoleAssignments bootstraps the access table from the environment so a
// fresh database is usable without manual inserts. ADMIN_EMAILS is a
// comma-separated list; each address gets the administrator role.
func SeedRoleAssignments(db *gorm.DB) {
	raw := os.Getenv("ADMIN_EMAILS")
	if raw == "" {
		return
	}
	for _, email := range strings.Split(raw, ",") {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		assignment := models.RoleAssignment{Email: email, Role: models.RoleAdministrator}
		if err := db.Where("email = ? AND role = ?", email, models.RoleAdministrator).
			FirstOrCreate(&assignment).Error; err != nil {
			log.Printf("⚠️ Seeding administrator %s failed: %v", email, err)
			continue
		}
		log.Printf("✅ Administrator seeded: %s", email)
	}
}

// defaultEquipments is the catalog the order form offers on a fresh
// install. Administrators extend it through the equipments endpoint.
var defaultEquipments = []string{
	"Prensa",
	"Misturador",
	"Esteira transportadora",
	"Compressor",
	"Bomba centrifuga",
}

// SeedEquipments inserts the default equipment catalog, skipping names
// that already exist.
func SeedEquipments(db *gorm.DB) {
	for _, name := range defaultEquipments {
		equipment := models.Equipment{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&equipment).Error; err != nil {
			log.Printf("⚠️ Seeding equipment %q failed: %v", name, err)
		}
	}
}

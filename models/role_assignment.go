package models

import "time"

// Workflow roles. Requester is implicit: anyone without an assignment row
// acts as a requester only.
const (
	RoleRequester     = "requester"
	RolePcm           = "pcm"
	RoleCipa          = "cipa"
	RoleSafety        = "safety"
	RoleLaboratory    = "laboratory"
	RoleAdministrator = "administrator"
)

// AssignableRoles lists the roles an administrator may grant to an email.
var AssignableRoles = []string{RolePcm, RoleCipa, RoleSafety, RoleLaboratory, RoleAdministrator}

// IsAssignableRole reports whether role may be stored in a RoleAssignment.
func IsAssignableRole(role string) bool {
	for _, r := range AssignableRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleAssignment maps an email to one workflow role. An email may hold
// several roles (one row each); the pair is unique.
type RoleAssignment struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email string `gorm:"size:255;not null;uniqueIndex:idx_role_assignments_email_role" json:"email"`
	Role  string `gorm:"size:50;not null;uniqueIndex:idx_role_assignments_email_role" json:"role"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for RoleAssignment
func (RoleAssignment) TableName() string {
	return "role_assignments"
}

// Equipment is a catalog entry feeding the request form's equipment field.
type Equipment struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:150;not null;uniqueIndex" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Equipment
func (Equipment) TableName() string {
	return "equipments"
}

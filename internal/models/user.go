package models

import "time"

// Role is the fixed account type assigned at creation.
type Role string

const (
	RoleFarmer  Role = "farmer"
	RoleAdvisor Role = "advisor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleAdvisor, RoleAdmin:
		return true
	}
	return false
}

// User represents a farmer, advisor or admin account.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name     string `json:"name" gorm:"type:varchar(255);not null"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password string `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Role     Role   `json:"role" gorm:"type:varchar(16);index;not null;default:farmer"`

	// Farmer profile
	Phone    string `json:"phone,omitempty" gorm:"type:varchar(64)"`
	Location string `json:"location,omitempty" gorm:"type:varchar(255)"`

	// Advisor profile
	Organization   string `json:"organization,omitempty" gorm:"type:varchar(255)"`
	Specialization string `json:"specialization,omitempty" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

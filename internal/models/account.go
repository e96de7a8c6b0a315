package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the typed access-control role for an account.
type Role string

const (
	RoleTenant     Role = "Tenant"
	RoleAccounting Role = "Accounting"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

// StaffRoles are the roles that receive operational notifications
// (billing postings, archivals, maintenance).
func StaffRoles() []Role {
	return []Role{RoleAccounting, RoleAdmin, RoleSuperAdmin}
}

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusPending   AccountStatus = "Pending"
	AccountStatusActive    AccountStatus = "Active"
	AccountStatusSuspended AccountStatus = "Suspended"
)

// Account is an identity that can authenticate against the API.
// Checking a tenant out suspends the owning account.
type Account struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	FirstName    string        `gorm:"type:varchar(255)" json:"first_name"`
	LastName     string        `gorm:"type:varchar(255)" json:"last_name"`
	Email        string        `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	PasswordHash string        `gorm:"type:varchar(255)" json:"-"`
	Role         Role          `gorm:"type:varchar(20);default:'Tenant'" json:"role"`
	Status       AccountStatus `gorm:"type:varchar(20);default:'Pending'" json:"status"`
}

// FullName returns the display name for notifications and summaries.
func (a Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// SetPassword hashes and stores the given plaintext password.
func (a *Account) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (a Account) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) == nil
}

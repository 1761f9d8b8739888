package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleBranchManager UserRole = "BRANCH_MANAGER"
	RoleSupervisor    UserRole = "SUPERVISOR"
	RoleOperator      UserRole = "OPERATOR"
)

// IsPrivileged reports whether the role may issue review actions.
func (r UserRole) IsPrivileged() bool {
	switch r {
	case RoleAdmin, RoleBranchManager, RoleSupervisor:
		return true
	}
	return false
}

type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"not null"`
	FirstName string         `json:"firstName" gorm:"not null"`
	LastName  string         `json:"lastName" gorm:"not null"`
	Role      UserRole       `json:"role" gorm:"not null;default:'OPERATOR'"`
	BranchID  *uint          `json:"branchId"`
	Branch    *Branch        `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

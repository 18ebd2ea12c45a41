package models

import (
	"strings"
	"time"

	"github.com/yukikurage/workforce-portal/internal/constants"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	EmployeeID   string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"employee_id"`
	FirstName    string    `gorm:"type:varchar(150);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(150);not null" json:"last_name"`
	Department   string    `gorm:"type:varchar(150);not null;index" json:"department"`
	Designation  string    `gorm:"type:varchar(150);not null;index" json:"designation"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	IsDirector   bool      `gorm:"not null;default:false" json:"is_director"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Assignments   []TaskAssignment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Conversations []Participant    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// DisplayName returns "First Last", falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// SeesAllTasks reports whether the user has the cross-department view.
// Admin is checked first everywhere roles are compared.
func (u User) SeesAllTasks() bool {
	return u.IsAdmin || u.IsDirector
}

// IsHOD reports whether the user heads a department.
func (u User) IsHOD() bool {
	return !u.SeesAllTasks() && u.Designation == constants.DesignationHOD
}

// CanManageNotices reports whether the user may edit the notice board.
func (u User) CanManageNotices() bool {
	return u.IsAdmin || u.IsDirector || strings.EqualFold(u.Department, constants.DepartmentHR)
}

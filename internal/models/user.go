// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// RoleUser is the role given to self-registered accounts.
	RoleUser = "user"
	// RoleAdmin grants the administrative capability.
	RoleAdmin = "admin"

	// DefaultStorageQuota is the quota in bytes given to provisioned accounts (1 GB).
	DefaultStorageQuota int64 = 1_000_000_000
)

// User represents a live account of the document service.
type User struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username       string         `gorm:"size:50;not null;uniqueIndex:idx_users_username,where:delete_date IS NULL" json:"username"`
	Password       string         `gorm:"size:100;not null" json:"-"`
	Email          string         `gorm:"size:100;not null" json:"email"`
	RoleID         string         `gorm:"size:36;not null;default:'user'" json:"role_id"`
	PrivateKey     string         `gorm:"size:100;not null" json:"-"`
	StorageQuota   int64          `gorm:"not null" json:"storage_quota"`
	StorageCurrent int64          `gorm:"not null;default:0" json:"storage_current"`
	Onboarding     bool           `gorm:"not null;default:false" json:"onboarding"`
	CreateDate     time.Time      `gorm:"not null" json:"create_date"`
	DeleteDate     gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the account holds the administrative capability.
func (u *User) IsAdmin() bool {
	return u != nil && u.RoleID == RoleAdmin
}

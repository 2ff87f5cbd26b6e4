package models

import (
	"fmt"
	"time"
)

// RegistrationStatus defines lifecycle states for self-registration requests.
type RegistrationStatus string

const (
	// RegistrationStatusPending indicates the request is awaiting an administrator.
	RegistrationStatusPending RegistrationStatus = "PENDING"
	// RegistrationStatusApproved indicates an account was provisioned from the request.
	RegistrationStatusApproved RegistrationStatus = "APPROVED"
	// RegistrationStatusRejected indicates the request was denied.
	RegistrationStatusRejected RegistrationStatus = "REJECTED"
)

// ParseRegistrationStatus converts a raw literal into a known status.
func ParseRegistrationStatus(raw string) (RegistrationStatus, error) {
	switch s := RegistrationStatus(raw); s {
	case RegistrationStatusPending, RegistrationStatusApproved, RegistrationStatusRejected:
		return s, nil
	default:
		return "", fmt.Errorf("unknown registration status %q", raw)
	}
}

// IsTerminal reports whether no further transition is allowed from s.
func (s RegistrationStatus) IsTerminal() bool {
	return s == RegistrationStatusApproved || s == RegistrationStatusRejected
}

// CanTransitionTo reports whether s may move to next.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	return s == RegistrationStatusPending && next.IsTerminal()
}

// RegistrationRequest is a self-registration attempt that has not (yet) become a live account.
// The partial unique index keeps at most one PENDING request per username.
type RegistrationRequest struct {
	ID           string             `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string             `gorm:"size:50;not null;index;uniqueIndex:idx_registration_requests_pending_username,where:status = 'PENDING'" json:"username"`
	PasswordHash string             `gorm:"column:password_hash;size:100;not null" json:"-"`
	Email        string             `gorm:"size:100;not null" json:"email"`
	CreateDate   time.Time          `gorm:"not null;index" json:"create_date"`
	Status       RegistrationStatus `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
}

// TableName returns the database table name for RegistrationRequest.
func (RegistrationRequest) TableName() string {
	return "registration_requests"
}

// IsPending reports whether the request still awaits a decision.
func (r *RegistrationRequest) IsPending() bool {
	return r.Status == RegistrationStatusPending
}

package models

import "time"

// AuditLogType is the kind of change an audit entry records.
type AuditLogType string

const (
	AuditLogCreate AuditLogType = "CREATE"
	AuditLogUpdate AuditLogType = "UPDATE"
	AuditLogDelete AuditLogType = "DELETE"
)

// AuditLog is an append-only record of an entity change and the actor behind it.
type AuditLog struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	EntityID    string       `gorm:"size:36;not null;index" json:"entity_id"`
	EntityClass string       `gorm:"size:50;not null" json:"entity_class"`
	Type        AuditLogType `gorm:"type:varchar(20);not null" json:"type"`
	Message     string       `gorm:"size:1000" json:"message,omitempty"`
	UserID      string       `gorm:"size:36;not null;index" json:"user_id"`
	CreateDate  time.Time    `gorm:"not null" json:"create_date"`
}

// TableName returns the database table name for AuditLog.
func (AuditLog) TableName() string {
	return "audit_logs"
}

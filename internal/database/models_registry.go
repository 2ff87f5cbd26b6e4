package database

import "docvault/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RegistrationRequest{},
		&models.AuditLog{},
	}
}

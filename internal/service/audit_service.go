package service

import (
	"context"

	"docvault/internal/models"
	"docvault/internal/repository"
)

// AuditRecorder records an entity change made by an actor.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditEntry describes one audited change.
type AuditEntry struct {
	EntityID    string
	EntityClass string
	Type        models.AuditLogType
	ActorID     string
	Message     string
}

// AuditRecorderFunc adapts a function to AuditRecorder.
type AuditRecorderFunc func(ctx context.Context, entry AuditEntry) error

func (f AuditRecorderFunc) Record(ctx context.Context, entry AuditEntry) error {
	return f(ctx, entry)
}

var noopAuditRecorder = AuditRecorderFunc(func(context.Context, AuditEntry) error { return nil })

type AuditService struct {
	repo repository.AuditLogRepository
}

func NewAuditService(repo repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Record(ctx context.Context, entry AuditEntry) error {
	return s.repo.Create(ctx, &models.AuditLog{
		EntityID:    entry.EntityID,
		EntityClass: entry.EntityClass,
		Type:        entry.Type,
		Message:     entry.Message,
		UserID:      entry.ActorID,
	})
}

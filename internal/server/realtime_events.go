package server

import (
	"context"
	"log/slog"

	"docvault/internal/middleware"
	"docvault/internal/notifications"
)

const (
	EventRegistrationRequestCreated  = notifications.EventRegistrationRequestCreated
	EventRegistrationRequestReviewed = notifications.EventRegistrationRequestReviewed
)

// publishAdminEvent sends an event to every connected administrator. With redis
// the event goes through pub/sub so every instance sees it; without redis it is
// delivered to this instance's hub directly.
func (s *Server) publishAdminEvent(ctx context.Context, eventType string, payload interface{}) {
	event := notifications.AdminEvent{Type: eventType, Payload: payload}

	if s.notifier.Enabled() {
		err := s.notifier.PublishAdminEvent(ctx, event)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "Failed to publish admin event, delivering locally",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
	}

	message, err := notifications.EncodeAdminEvent(event)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "Failed to encode admin event",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	s.hub.BroadcastAll(message)
}

// Package notifications delivers administrator events over redis pub/sub and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"docvault/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// AdminRegistrationsChannel carries registration lifecycle events for administrators.
const AdminRegistrationsChannel = "admin:registrations"

const (
	EventRegistrationRequestCreated  = "registration_request_created"
	EventRegistrationRequestReviewed = "registration_request_reviewed"
)

// AdminEvent is the wire format of every message on AdminRegistrationsChannel.
type AdminEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Notifier publishes admin events into redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether events actually leave the process.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishAdminEvent encodes event and publishes it on AdminRegistrationsChannel.
func (n *Notifier) PublishAdminEvent(ctx context.Context, event AdminEvent) error {
	if !n.Enabled() {
		return nil
	}
	payload, err := EncodeAdminEvent(event)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, AdminRegistrationsChannel, payload).Err()
}

// EncodeAdminEvent renders event as the JSON text sent to websocket clients.
func EncodeAdminEvent(event AdminEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal admin event: %w", err)
	}
	return string(data), nil
}

// StartAdminSubscriber subscribes to AdminRegistrationsChannel and calls onMessage
// for each payload until ctx is cancelled.
func (n *Notifier) StartAdminSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, AdminRegistrationsChannel)
	// Wait for the subscription confirmation so no event published right after
	// this call is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", AdminRegistrationsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("Panic in admin event subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}

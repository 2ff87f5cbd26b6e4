package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishAdminEvent(context.Background(), AdminEvent{Type: EventRegistrationRequestCreated}))
	assert.NoError(t, n.StartAdminSubscriber(context.Background(), func(string) {
		t.Error("no message expected")
	}))
}

func TestEncodeAdminEvent(t *testing.T) {
	t.Parallel()
	payload, err := EncodeAdminEvent(AdminEvent{
		Type:    EventRegistrationRequestReviewed,
		Payload: map[string]string{"id": "req-1", "status": "APPROVED"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"registration_request_reviewed","payload":{"id":"req-1","status":"APPROVED"}}`, payload)

	_, err = EncodeAdminEvent(AdminEvent{Type: "bad", Payload: make(chan int)})
	assert.Error(t, err)
}

func TestNotifier_PublishAndSubscribe(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 4)
	require.NoError(t, n.StartAdminSubscriber(ctx, func(payload string) { payloads <- payload }))

	require.NoError(t, n.PublishAdminEvent(context.Background(), AdminEvent{
		Type:    EventRegistrationRequestCreated,
		Payload: map[string]string{"username": "alice"},
	}))

	select {
	case payload := <-payloads:
		var event struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(payload), &event))
		assert.Equal(t, EventRegistrationRequestCreated, event.Type)
		assert.Equal(t, "alice", event.Payload["username"])
	case <-time.After(testEventuallyTimeout):
		t.Fatal("admin event not delivered")
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	payloads := make(chan string, 4)
	require.NoError(t, n.StartAdminSubscriber(ctx, func(payload string) { payloads <- payload }))

	require.NoError(t, rdb.Publish(context.Background(), AdminRegistrationsChannel, "before-cancel").Err())
	assert.Eventually(t, func() bool { return len(payloads) == 1 }, testEventuallyTimeout, testPollInterval)
	<-payloads

	cancel()
	assert.Eventually(t, func() bool {
		subs, err := rdb.PubSubNumSub(context.Background(), AdminRegistrationsChannel).Result()
		return err == nil && subs[AdminRegistrationsChannel] == 0
	}, testEventuallyTimeout, testPollInterval)

	require.NoError(t, rdb.Publish(context.Background(), AdminRegistrationsChannel, "after-cancel").Err())
	assert.Never(t, func() bool { return len(payloads) > 0 }, 200*time.Millisecond, testPollInterval)
}

func TestNotifier_SubscriberSurvivesPanics(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 4)
	require.NoError(t, n.StartAdminSubscriber(ctx, func(payload string) {
		if payload == "boom" {
			panic("handler failure")
		}
		payloads <- payload
	}))

	require.NoError(t, rdb.Publish(context.Background(), AdminRegistrationsChannel, "boom").Err())
	require.NoError(t, rdb.Publish(context.Background(), AdminRegistrationsChannel, "after").Err())

	select {
	case payload := <-payloads:
		assert.Equal(t, "after", payload)
	case <-time.After(testEventuallyTimeout):
		t.Fatal("subscriber stopped after a panic")
	}
}

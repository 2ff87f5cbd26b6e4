package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	RegistrationStatusKeyPrefix = "registration:status:%s"
)

const (
	RegistrationStatusTTL = time.Minute
)

// RegistrationStatusChanged marks a status key whose request changed recently.
// Readers treat it as a miss and SetStringNX cannot overwrite it.
const RegistrationStatusChanged = "-"

func RegistrationStatusKey(username string) string {
	return fmt.Sprintf(RegistrationStatusKeyPrefix, username)
}

// GetString reads key. The boolean is false on a miss, on any redis error and
// when redis is not configured.
func GetString(ctx context.Context, key string) (string, bool) {
	if client == nil {
		return "", false
	}
	val, err := client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// SetString stores value under key for ttl. Errors are ignored; the cache is best effort.
func SetString(ctx context.Context, key, value string, ttl time.Duration) {
	if client != nil {
		client.Set(ctx, key, value, ttl)
	}
}

// SetStringNX stores value under key only if key is absent.
func SetStringNX(ctx context.Context, key, value string, ttl time.Duration) {
	if client != nil {
		client.SetNX(ctx, key, value, ttl)
	}
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// MarkRegistrationStatusChanged replaces any cached status for username with
// the changed marker for one TTL, so a lookup that read the database before
// the change cannot store its stale result.
func MarkRegistrationStatusChanged(ctx context.Context, username string) {
	SetString(ctx, RegistrationStatusKey(username), RegistrationStatusChanged, RegistrationStatusTTL)
}

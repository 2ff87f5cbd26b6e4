package service

import (
	"context"

	"docvault/internal/cache"
	"docvault/internal/models"
)

// CachedStatusLookup keeps recent registration statuses in redis so repeated
// failed logins do not hit the database. RegistrationService marks a username
// as changed after every commit that touches its requests.
type CachedStatusLookup struct {
	next RegistrationStatusLookup
}

func NewCachedStatusLookup(next RegistrationStatusLookup) *CachedStatusLookup {
	return &CachedStatusLookup{next: next}
}

func (l *CachedStatusLookup) LookupStatus(ctx context.Context, username string) (models.RegistrationStatus, bool) {
	key := cache.RegistrationStatusKey(username)
	raw, hit := cache.GetString(ctx, key)
	if hit && raw == cache.RegistrationStatusChanged {
		return l.next.LookupStatus(ctx, username)
	}
	if hit {
		if status, err := models.ParseRegistrationStatus(raw); err == nil {
			return status, true
		}
		cache.Invalidate(ctx, key)
	}

	status, ok := l.next.LookupStatus(ctx, username)
	if ok {
		// Conditional so a concurrent change marker always wins over this read.
		cache.SetStringNX(ctx, key, string(status), cache.RegistrationStatusTTL)
	}
	return status, ok
}

// ForgetRegistrationStatus invalidates the cached status for username.
func ForgetRegistrationStatus(ctx context.Context, username string) {
	cache.MarkRegistrationStatusChanged(ctx, username)
}

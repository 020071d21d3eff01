package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"core/internal/clock"
)

// Window implements the TTL-bounded rate-limit counters and dedupe
// markers under guards/. The store has no native expiry, so entries
// carry their own expiresAt and are lazily expired: an expired entry
// counts as absent and is removed best-effort on the next read.
type Window struct {
	Store Client
	Clock clock.Clock
}

type counterEntry struct {
	Count     int   `json:"count"`
	ExpiresAt int64 `json:"expiresAt"` // epoch millis
}

type dedupeEntry struct {
	RequestID string `json:"requestId"`
	ExpiresAt int64  `json:"expiresAt"`
}

func rateKey(purpose, identity string) string {
	return fmt.Sprintf("%s-rate:%s", purpose, identity)
}

func dedupeKey(purpose, identity, discriminator string) string {
	key := fmt.Sprintf("%s-dedupe:%s", purpose, identity)
	if discriminator != "" {
		key += ":" + discriminator
	}
	return key
}

// Allow checks the counter for (purpose, identity) against limit and,
// when under it, increments with the window TTL. The rejection path is
// read-only: a guest over the limit causes no store write.
func (w Window) Allow(ctx context.Context, purpose, identity string, limit int, window time.Duration) (bool, error) {
	path := GuardPath(rateKey(purpose, identity))
	now := w.Clock.Now()

	var entry counterEntry
	found, err := w.Store.Get(ctx, path, &entry)
	if err != nil {
		return false, err
	}

	if found && entry.ExpiresAt <= now.UnixMilli() {
		w.expire(ctx, path)
		found = false
	}

	if !found {
		entry = counterEntry{Count: 1, ExpiresAt: now.Add(window).UnixMilli()}
		return true, w.Store.Set(ctx, path, entry)
	}

	if entry.Count >= limit {
		return false, nil
	}

	entry.Count++
	return true, w.Store.Set(ctx, path, entry)
}

// Lookup returns the request id recorded by a previous Mark for the
// same submission, if the marker is still live.
func (w Window) Lookup(ctx context.Context, purpose, identity, discriminator string) (string, bool, error) {
	path := GuardPath(dedupeKey(purpose, identity, discriminator))

	var entry dedupeEntry
	found, err := w.Store.Get(ctx, path, &entry)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}
	if entry.ExpiresAt <= w.Clock.Now().UnixMilli() {
		w.expire(ctx, path)
		return "", false, nil
	}
	return entry.RequestID, true, nil
}

// Mark records that a submission produced requestID, collapsing
// identical resubmissions inside the TTL into that one record.
func (w Window) Mark(ctx context.Context, purpose, identity, discriminator, requestID string, ttl time.Duration) error {
	path := GuardPath(dedupeKey(purpose, identity, discriminator))
	entry := dedupeEntry{
		RequestID: requestID,
		ExpiresAt: w.Clock.Now().Add(ttl).UnixMilli(),
	}
	return w.Store.Set(ctx, path, entry)
}

func (w Window) expire(ctx context.Context, path string) {
	if err := w.Store.Delete(ctx, path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("Failed to remove expired guard entry")
	}
}

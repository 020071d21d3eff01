// Package store fronts the key-path-addressed document store that holds
// queue records, prime requests and guard counters. Paths are
// slash-delimited; only single-path writes and the multi-path form of
// Update are atomic.
package store

import "context"

// Client is the document store surface the core depends on.
type Client interface {
	// Get reads the value at path into the given destination. The bool
	// reports whether anything exists at the path.
	Get(ctx context.Context, path string, into interface{}) (bool, error)
	// Set replaces the value at path.
	Set(ctx context.Context, path string, value interface{}) error
	// Update merges the given relative-path -> value entries under path
	// in one logical write. A nil/null value removes the entry.
	Update(ctx context.Context, path string, values map[string]interface{}) error
	// Delete removes the value at path.
	Delete(ctx context.Context, path string) error
}

// Canonical path builders. Keeping them here keeps the tree layout in
// one place.

func QueueRecordPath(eventID string) string {
	return "messagingQueue/" + eventID
}

func SessionPath(token string) string {
	return "guestSessionsByToken/" + token
}

func BookingGuestPath(bookingID, guestUUID string) string {
	return "bookings/" + bookingID + "/" + guestUUID
}

func CheckInCodePath(code string) string {
	return "checkInCodes/" + code
}

func GuardPath(key string) string {
	return "guards/" + key
}

func StaffDeviceTokensPath() string {
	return "staffDeviceTokens"
}

package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Prime request types guests can submit from the portal.
type RequestType string

const (
	RequestExtension        RequestType = "extension"
	RequestBagDrop          RequestType = "bag_drop"
	RequestMealChangeExcept RequestType = "meal_change_exception"
)

// RequestStatusPending is the only status this service ever writes.
const RequestStatusPending = "pending"

// PrimeRequest is the staff-actionable record of a guest action. The
// portal only ever creates these in status pending; staff tooling owns
// every later status change.
type PrimeRequest struct {
	RequestID   string                 `json:"requestId"`
	Type        RequestType            `json:"type"`
	Status      string                 `json:"status"`
	BookingID   string                 `json:"bookingId"`
	GuestUUID   string                 `json:"guestUuid"`
	GuestName   string                 `json:"guestName"`
	Note        string                 `json:"note,omitempty"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	SubmittedAt time.Time              `json:"submittedAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// NewRequestID builds a creation-time-ordered, collision-resistant id:
// {type}_{epochMillis}_{12-hex-random-suffix}.
func NewRequestID(t RequestType, now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// the timestamp nanos so the id is still unique per process.
		return fmt.Sprintf("%s_%d_%012x", t, now.UnixMilli(), now.UnixNano()&0xffffffffffff)
	}
	return fmt.Sprintf("%s_%d_%s", t, now.UnixMilli(), hex.EncodeToString(buf))
}

// FanOut returns the four index entries for one multi-path store update.
// Every reader (staff dashboards, guest history) queries a different
// index, so the full record is written under all four paths in a single
// write: either all exist or none do.
func (r PrimeRequest) FanOut() map[string]interface{} {
	return map[string]interface{}{
		"primeRequests/byId/" + r.RequestID:                          r,
		"primeRequests/byGuest/" + r.GuestUUID + "/" + r.RequestID:   r,
		"primeRequests/byStatus/" + r.Status + "/" + r.RequestID:     r,
		"primeRequests/byType/" + string(r.Type) + "/" + r.RequestID: r,
	}
}

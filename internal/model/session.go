package model

import "time"

// GuestSession is the time-limited token record written by the auth
// layer at guestSessionsByToken/{token}. Timestamps are ISO strings the
// way the auth layer writes them.
type GuestSession struct {
	BookingID string `json:"bookingId"`
	GuestUUID string `json:"guestUuid"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at the given
// time. An unparseable expiry counts as expired.
func (s GuestSession) Expired(now time.Time) bool {
	exp, err := time.Parse(time.RFC3339, s.ExpiresAt)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}

// BookingGuest is the slice of the booking record the request flows
// read, persisted at bookings/{bookingId}/{guestUuid}.
type BookingGuest struct {
	FirstName    string `json:"firstName"`
	Email        string `json:"email,omitempty"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	MealPlan     string `json:"mealPlan,omitempty"`
	CheckedOut   bool   `json:"checkedOut,omitempty"`
}

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Queue event types emitted by the booking lifecycle.
type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventArrival7Days     EventType = "arrival.7days"
	EventArrival48Hours   EventType = "arrival.48hours"
	EventArrivalMorning   EventType = "arrival.morning"
)

// KnownEventTypes maps every event type this service understands.
var KnownEventTypes = map[EventType]bool{
	EventBookingConfirmed: true,
	EventArrival7Days:     true,
	EventArrival48Hours:   true,
	EventArrivalMorning:   true,
}

type QueueStatus string

const (
	QueuePending    QueueStatus = "pending"
	QueueProcessing QueueStatus = "processing"
	QueueSent       QueueStatus = "sent"
	QueueFailed     QueueStatus = "failed"
)

var knownQueueStatuses = map[QueueStatus]bool{
	QueuePending:    true,
	QueueProcessing: true,
	QueueSent:       true,
	QueueFailed:     true,
}

// QueueRecord is one outbound messaging event persisted at
// messagingQueue/{eventId}. Created upstream in status pending, mutated
// only by the dispatcher, never deleted.
type QueueRecord struct {
	EventID     string          `json:"eventId"`
	EventType   EventType       `json:"eventType"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   string          `json:"createdAt"`
	Status      QueueStatus     `json:"status"`
	RetryCount  int             `json:"retryCount"`
	LastError   *string         `json:"lastError"`
	ProcessedAt *time.Time      `json:"processedAt"`
}

// Validate checks the stored shape before any delivery is attempted.
// A record failing here is marked terminally failed so it is never
// retried (spoiled data, not a provider fault).
func (r QueueRecord) Validate() error {
	if r.EventID == "" {
		return fmt.Errorf("queue record: missing eventId")
	}
	if !KnownEventTypes[r.EventType] {
		return fmt.Errorf("queue record %s: unknown event type %q", r.EventID, r.EventType)
	}
	if !knownQueueStatuses[r.Status] {
		return fmt.Errorf("queue record %s: unknown status %q", r.EventID, r.Status)
	}
	if r.RetryCount < 0 {
		return fmt.Errorf("queue record %s: negative retry count %d", r.EventID, r.RetryCount)
	}
	if _, err := DecodePayload(r.EventType, r.Payload); err != nil {
		return fmt.Errorf("queue record %s: %w", r.EventID, err)
	}
	return nil
}

// BookingConfirmedPayload is the payload shape for booking.confirmed.
type BookingConfirmedPayload struct {
	GuestName    string  `json:"guestName"`
	Email        string  `json:"email"`
	BookingID    string  `json:"bookingId"`
	CheckInDate  string  `json:"checkInDate"`
	CheckOutDate string  `json:"checkOutDate"`
	TotalAmount  float64 `json:"totalAmount"`
	Currency     string  `json:"currency"`
	PortalURL    string  `json:"portalUrl"`
}

// ArrivalReminderPayload is the shared payload shape for the three
// arrival.* reminder events.
type ArrivalReminderPayload struct {
	GuestName   string  `json:"guestName"`
	Email       string  `json:"email"`
	BookingID   string  `json:"bookingId"`
	CheckInDate string  `json:"checkInDate"`
	BalanceDue  float64 `json:"balanceDue"`
	Currency    string  `json:"currency"`
	PortalURL   string  `json:"portalUrl"`
	CheckInCode string  `json:"checkInCode,omitempty"`
}

// DecodePayload converts the loosely typed payload tree into the struct
// matching the event type, rejecting shapes that do not carry the fields
// the corresponding email template needs.
func DecodePayload(t EventType, raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("empty payload for event type %q", t)
	}

	switch t {
	case EventBookingConfirmed:
		var p BookingConfirmedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("payload does not match %q: %w", t, err)
		}
		if p.Email == "" || p.BookingID == "" || p.CheckInDate == "" {
			return nil, fmt.Errorf("payload for %q is missing required fields", t)
		}
		return p, nil
	case EventArrival7Days, EventArrival48Hours, EventArrivalMorning:
		var p ArrivalReminderPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("payload does not match %q: %w", t, err)
		}
		if p.Email == "" || p.BookingID == "" || p.CheckInDate == "" {
			return nil, fmt.Errorf("payload for %q is missing required fields", t)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
}

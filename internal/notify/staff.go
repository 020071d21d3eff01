package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"core/internal/model"
	"core/internal/store"
)

// Delivery modes reported back to the guest response. The request
// record is already durable by the time any of this runs; these only
// say how staff were told about it.
const (
	DeliveryModeEmail  = "email"
	DeliveryModeQueued = "queued"
	DeliveryModeNone   = "none"
)

// Publisher is the message-bus surface used for the staff back-channel.
type Publisher interface {
	Send(topic string, key string, v interface{}) error
}

// Pusher sends push notifications to registered staff devices.
type Pusher interface {
	SendNotificationMulti(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// Staff fans a new prime request out to the property: relay email
// first, message bus as fallback, push on top. Everything here is
// best-effort; failures are logged and never propagate to the guest.
type Staff struct {
	Mailer     *Mailer
	StaffEmail string
	Publisher  Publisher // nil when the bus is disabled
	Topic      string
	Push       Pusher // nil when push is disabled
	Store      store.Client
}

type staffRequestEvent struct {
	RequestID   string    `json:"requestId"`
	Type        string    `json:"type"`
	BookingID   string    `json:"bookingId"`
	GuestUUID   string    `json:"guestUuid"`
	GuestName   string    `json:"guestName"`
	Note        string    `json:"note,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// RequestCreated notifies staff about req and reports the achieved
// delivery mode.
func (s *Staff) RequestCreated(ctx context.Context, req model.PrimeRequest, guest model.BookingGuest) string {
	mode := DeliveryModeNone

	subject := fmt.Sprintf("New %s request from %s", req.Type, req.GuestName)
	body := fmt.Sprintf("Guest %s (booking %s) submitted a %s request.\nRequest id: %s\n",
		req.GuestName, req.BookingID, req.Type, req.RequestID)
	if req.Note != "" {
		body += "Note: " + req.Note + "\n"
	}

	if s.Mailer != nil && s.StaffEmail != "" {
		if err := s.Mailer.SendStaffEmail(ctx, s.StaffEmail, subject, body); err != nil {
			logrus.WithError(err).WithField("request_id", req.RequestID).Warn("Staff email failed, falling back to bus")
		} else {
			mode = DeliveryModeEmail
		}
	}

	if mode == DeliveryModeNone && s.Publisher != nil {
		event := staffRequestEvent{
			RequestID:   req.RequestID,
			Type:        string(req.Type),
			BookingID:   req.BookingID,
			GuestUUID:   req.GuestUUID,
			GuestName:   req.GuestName,
			Note:        req.Note,
			SubmittedAt: req.SubmittedAt,
		}
		if err := s.Publisher.Send(s.Topic, req.RequestID, event); err != nil {
			logrus.WithError(err).WithField("request_id", req.RequestID).Warn("Staff bus publish failed")
		} else {
			mode = DeliveryModeQueued
		}
	}

	s.push(ctx, req, subject)
	return mode
}

func (s *Staff) push(ctx context.Context, req model.PrimeRequest, title string) {
	if s.Push == nil || s.Store == nil {
		return
	}

	var registered map[string]interface{}
	found, err := s.Store.Get(ctx, store.StaffDeviceTokensPath(), &registered)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read staff device tokens")
		return
	}
	if !found || len(registered) == 0 {
		return
	}

	tokens := make([]string, 0, len(registered))
	for token := range registered {
		tokens = append(tokens, token)
	}

	data := map[string]string{"requestId": req.RequestID, "type": string(req.Type)}
	if err := s.Push.SendNotificationMulti(ctx, tokens, title, "Open the staff dashboard to action it.", data); err != nil {
		logrus.WithError(err).WithField("request_id", req.RequestID).Warn("Staff push notification failed")
	}
}

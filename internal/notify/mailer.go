package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"core/internal/model"
)

const relayTimeout = 15 * time.Second

// Mailer sends guest lifecycle emails through the property's mail
// relay. The relay is an external collaborator reached over plain HTTP;
// its failures surface as DeliveryError so the classifier can separate
// retryable outages from terminal rejections.
type Mailer struct {
	RelayURL string
	APIKey   string
	From     string
	Client   *http.Client
}

func NewMailer(relayURL, apiKey, from string) *Mailer {
	return &Mailer{
		RelayURL: relayURL,
		APIKey:   apiKey,
		From:     from,
		Client:   &http.Client{Timeout: relayTimeout},
	}
}

type relayMessage struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type relayError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DeliverQueueEvent is the dispatcher's delivery function: it renders
// the email for one queue record and posts it to the relay.
func (m *Mailer) DeliverQueueEvent(ctx context.Context, payload json.RawMessage, rec model.QueueRecord) error {
	decoded, err := model.DecodePayload(rec.EventType, payload)
	if err != nil {
		return &DeliveryError{Code: "invalid_payload", Permanent: true, Msg: err.Error()}
	}

	msg, err := renderEmail(rec.EventType, decoded)
	if err != nil {
		return &DeliveryError{Code: "invalid_payload", Permanent: true, Msg: err.Error()}
	}
	msg.From = m.From

	return m.send(ctx, msg)
}

// SendStaffEmail posts a plain staff notification to the relay.
func (m *Mailer) SendStaffEmail(ctx context.Context, to, subject, text string) error {
	return m.send(ctx, relayMessage{To: to, From: m.From, Subject: subject, Text: text})
}

func (m *Mailer) send(ctx context.Context, msg relayMessage) error {
	if m.RelayURL == "" {
		return fmt.Errorf("mail relay not configured")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return &DeliveryError{Code: "invalid_payload", Permanent: true, Msg: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.RelayURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.APIKey)
	}

	resp, err := m.Client.Do(req)
	if err != nil {
		// Network faults stay plain errors: transient by default.
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var relayErr relayError
	_ = json.Unmarshal(raw, &relayErr)

	msgText := relayErr.Error
	if msgText == "" {
		msgText = string(raw)
	}
	return &DeliveryError{Status: resp.StatusCode, Code: relayErr.Code, Msg: msgText}
}

func renderEmail(t model.EventType, decoded interface{}) (relayMessage, error) {
	switch p := decoded.(type) {
	case model.BookingConfirmedPayload:
		return relayMessage{
			To:      p.Email,
			Subject: fmt.Sprintf("Booking %s confirmed", p.BookingID),
			Text: fmt.Sprintf(
				"Hi %s,\n\nYour booking %s is confirmed: %s to %s.\nTotal: %.2f %s.\n\nManage your stay: %s\n",
				p.GuestName, p.BookingID, p.CheckInDate, p.CheckOutDate, p.TotalAmount, p.Currency, p.PortalURL),
		}, nil
	case model.ArrivalReminderPayload:
		var subject string
		switch t {
		case model.EventArrival7Days:
			subject = "One week until your stay"
		case model.EventArrival48Hours:
			subject = "Arriving in 48 hours"
		case model.EventArrivalMorning:
			subject = "See you today"
		default:
			return relayMessage{}, fmt.Errorf("no email template for event type %q", t)
		}

		text := fmt.Sprintf("Hi %s,\n\nYour check-in date is %s.\n", p.GuestName, p.CheckInDate)
		if p.BalanceDue > 0 {
			text += fmt.Sprintf("Balance due on arrival: %.2f %s.\n", p.BalanceDue, p.Currency)
		}
		if p.CheckInCode != "" {
			text += fmt.Sprintf("Your check-in code: %s\n", p.CheckInCode)
		}
		text += fmt.Sprintf("\nEverything about your stay: %s\n", p.PortalURL)

		return relayMessage{To: p.Email, Subject: subject, Text: text}, nil
	default:
		return relayMessage{}, fmt.Errorf("no email template for event type %q", t)
	}
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"core/internal/model"
)

func arrivalRecord() (json.RawMessage, model.QueueRecord) {
	payload := json.RawMessage(`{"guestName":"Jane","email":"jane@example.com","bookingId":"BOOK-1","checkInDate":"2026-03-07","balanceDue":42.5,"currency":"EUR","portalUrl":"https://portal.example.com","checkInCode":"ABC234"}`)
	return payload, model.QueueRecord{
		EventID:   "evt_1",
		EventType: model.EventArrival48Hours,
		Payload:   payload,
		Status:    model.QueuePending,
	}
}

func TestDeliverQueueEventPostsToRelay(t *testing.T) {
	var got relayMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("relay received invalid JSON: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMailer(srv.URL, "relay-key", "stay@example.com")
	payload, rec := arrivalRecord()

	if err := m.DeliverQueueEvent(context.Background(), payload, rec); err != nil {
		t.Fatalf("DeliverQueueEvent: %v", err)
	}

	if auth != "Bearer relay-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.To != "jane@example.com" || got.From != "stay@example.com" {
		t.Errorf("addresses = %q -> %q", got.From, got.To)
	}
	if got.Subject != "Arriving in 48 hours" {
		t.Errorf("subject = %q", got.Subject)
	}
	if !strings.Contains(got.Text, "42.50 EUR") || !strings.Contains(got.Text, "ABC234") {
		t.Errorf("text missing balance or check-in code:\n%s", got.Text)
	}
}

func TestDeliverQueueEventRelayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"recipient suppressed","code":"permission_denied"}`))
	}))
	defer srv.Close()

	m := NewMailer(srv.URL, "", "stay@example.com")
	payload, rec := arrivalRecord()

	err := m.DeliverQueueEvent(context.Background(), payload, rec)
	var dErr *DeliveryError
	if !errors.As(err, &dErr) {
		t.Fatalf("err = %v, want a DeliveryError", err)
	}
	if dErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", dErr.Status)
	}
	if dErr.Code != "permission_denied" {
		t.Errorf("code = %q", dErr.Code)
	}
	if dErr.Msg != "recipient suppressed" {
		t.Errorf("msg = %q", dErr.Msg)
	}
}

func TestDeliverQueueEventRelayOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewMailer(srv.URL, "", "stay@example.com")
	payload, rec := arrivalRecord()

	err := m.DeliverQueueEvent(context.Background(), payload, rec)
	var dErr *DeliveryError
	if !errors.As(err, &dErr) {
		t.Fatalf("err = %v, want a DeliveryError", err)
	}
	if dErr.Status != http.StatusServiceUnavailable || dErr.Permanent {
		t.Errorf("got %+v, want a retryable 503", dErr)
	}
}

func TestDeliverQueueEventBadPayloadIsPermanent(t *testing.T) {
	m := NewMailer("http://relay.invalid", "", "stay@example.com")

	rec := model.QueueRecord{
		EventID:   "evt_bad",
		EventType: model.EventBookingConfirmed,
		Status:    model.QueuePending,
	}

	err := m.DeliverQueueEvent(context.Background(), json.RawMessage(`{"email":""}`), rec)
	var dErr *DeliveryError
	if !errors.As(err, &dErr) {
		t.Fatalf("err = %v, want a DeliveryError", err)
	}
	if !dErr.Permanent || dErr.Code != "invalid_payload" {
		t.Errorf("got %+v, want a permanent invalid_payload error", dErr)
	}
}

func TestRenderBookingConfirmed(t *testing.T) {
	msg, err := renderEmail(model.EventBookingConfirmed, model.BookingConfirmedPayload{
		GuestName:    "Jane",
		Email:        "jane@example.com",
		BookingID:    "BOOK-1",
		CheckInDate:  "2026-03-02",
		CheckOutDate: "2026-03-10",
		TotalAmount:  120,
		Currency:     "EUR",
		PortalURL:    "https://portal.example.com",
	})
	if err != nil {
		t.Fatalf("renderEmail: %v", err)
	}
	if msg.Subject != "Booking BOOK-1 confirmed" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "2026-03-02 to 2026-03-10") {
		t.Errorf("text = %q", msg.Text)
	}
}

func TestRenderArrivalOmitsZeroBalance(t *testing.T) {
	msg, err := renderEmail(model.EventArrivalMorning, model.ArrivalReminderPayload{
		GuestName:   "Jane",
		Email:       "jane@example.com",
		BookingID:   "BOOK-1",
		CheckInDate: "2026-03-07",
		PortalURL:   "https://portal.example.com",
	})
	if err != nil {
		t.Fatalf("renderEmail: %v", err)
	}
	if strings.Contains(msg.Text, "Balance due") {
		t.Errorf("zero balance should not be mentioned:\n%s", msg.Text)
	}
}

package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"core/internal/clock"
	"core/internal/model"
)

var arrivalPayload = json.RawMessage(`{
	"guestName":   "Jane",
	"email":       "jane@example.com",
	"bookingId":   "BOOK-901",
	"checkInDate": "2026-03-07",
	"balanceDue":  42.5,
	"currency":    "EUR",
	"portalUrl":   "https://portal.example.com/BOOK-901"
}`)

func pendingRecord(id string) model.QueueRecord {
	return model.QueueRecord{
		EventID:   id,
		EventType: model.EventArrival48Hours,
		Payload:   arrivalPayload,
		CreatedAt: "2026-03-05T08:00:00Z",
		Status:    model.QueuePending,
	}
}

func testDeps(deliver DeliveryFunc, clk clock.Clock) ProcessorDeps {
	return ProcessorDeps{Deliver: deliver, Classify: Classify, Clock: clk}
}

func TestProcessRecordSuccess(t *testing.T) {
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)

	rec := pendingRecord("evt_1")
	rec.RetryCount = 2

	res := ProcessRecord(context.Background(), rec, testDeps(
		func(ctx context.Context, payload json.RawMessage, r model.QueueRecord) error {
			return nil
		}, clk))

	if res.Outcome != OutcomeSent {
		t.Fatalf("outcome = %q, want %q", res.Outcome, OutcomeSent)
	}
	tr := res.Transition
	if tr == nil {
		t.Fatal("expected a transition")
	}
	if tr.Status != model.QueueSent {
		t.Errorf("status = %q, want sent", tr.Status)
	}
	if tr.RetryCount != 2 {
		t.Errorf("retryCount = %d, want 2 (unchanged on success)", tr.RetryCount)
	}
	if tr.LastError != nil {
		t.Errorf("lastError = %q, want nil", *tr.LastError)
	}
	if tr.ProcessedAt == nil || !tr.ProcessedAt.Equal(now) {
		t.Errorf("processedAt = %v, want %v", tr.ProcessedAt, now)
	}
}

func TestProcessRecordTransientFailure(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))
	rec := pendingRecord("evt_1")

	res := ProcessRecord(context.Background(), rec, testDeps(
		func(ctx context.Context, payload json.RawMessage, r model.QueueRecord) error {
			return &deliveryErr{status: 503}
		}, clk))

	if res.Outcome != OutcomeRetry {
		t.Fatalf("outcome = %q, want %q", res.Outcome, OutcomeRetry)
	}
	tr := res.Transition
	if tr.Status != model.QueuePending {
		t.Errorf("status = %q, want pending for a retryable failure", tr.Status)
	}
	if tr.RetryCount != 1 {
		t.Errorf("retryCount = %d, want 1", tr.RetryCount)
	}
	if tr.LastError == nil || *tr.LastError == "" {
		t.Error("expected lastError to carry the failure message")
	}
	if tr.ProcessedAt != nil {
		t.Errorf("processedAt = %v, want nil until a terminal state", tr.ProcessedAt)
	}
}

func TestProcessRecordPermanentFailure(t *testing.T) {
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)

	rec := pendingRecord("evt_2")
	rec.RetryCount = 4

	res := ProcessRecord(context.Background(), rec, testDeps(
		func(ctx context.Context, payload json.RawMessage, r model.QueueRecord) error {
			return &deliveryErr{code: "invalid_payload"}
		}, clk))

	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %q, want %q", res.Outcome, OutcomeFailed)
	}
	tr := res.Transition
	if tr.Status != model.QueueFailed {
		t.Errorf("status = %q, want failed", tr.Status)
	}
	if tr.RetryCount != 5 {
		t.Errorf("retryCount = %d, want 5", tr.RetryCount)
	}
	if tr.ProcessedAt == nil || !tr.ProcessedAt.Equal(now) {
		t.Errorf("processedAt = %v, want %v", tr.ProcessedAt, now)
	}
}

func TestProcessRecordIdempotent(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))

	for _, status := range []model.QueueStatus{model.QueueSent, model.QueueProcessing, model.QueueFailed} {
		t.Run(string(status), func(t *testing.T) {
			rec := pendingRecord("evt_3")
			rec.Status = status

			delivered := false
			res := ProcessRecord(context.Background(), rec, testDeps(
				func(ctx context.Context, payload json.RawMessage, r model.QueueRecord) error {
					delivered = true
					return nil
				}, clk))

			if res.Outcome != OutcomeIdempotent {
				t.Fatalf("outcome = %q, want %q", res.Outcome, OutcomeIdempotent)
			}
			if res.Transition != nil {
				t.Error("idempotent outcome must not mutate the record")
			}
			if delivered {
				t.Error("delivery must not run for a non-pending record")
			}
		})
	}
}

func TestProcessRecordUnsupported(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))

	deps := testDeps(func(ctx context.Context, payload json.RawMessage, r model.QueueRecord) error {
		t.Fatal("delivery must not run for an unsupported event type")
		return nil
	}, clk)
	deps.EventTypes = map[model.EventType]bool{model.EventBookingConfirmed: true}

	res := ProcessRecord(context.Background(), pendingRecord("evt_4"), deps)

	if res.Outcome != OutcomeUnsupported {
		t.Fatalf("outcome = %q, want %q", res.Outcome, OutcomeUnsupported)
	}
	if res.Transition != nil {
		t.Error("unsupported outcome must not mutate the record")
	}
}

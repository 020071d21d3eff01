package request

import (
	"context"
	"errors"
	"strings"
	"testing"

	"core/internal/model"
)

func TestSubmitBagDropAfterCheckoutDay(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()

	// Checkout day is today.
	seedGuest(t, st, model.BookingGuest{
		FirstName:    "Jane",
		CheckOutDate: "2026-03-05",
	})

	res, err := svc.SubmitBagDrop(ctx, BagDropInput{Token: testToken, BagCount: 2})
	if err != nil {
		t.Fatalf("SubmitBagDrop: %v", err)
	}
	if !strings.HasPrefix(res.RequestID, "bag_drop_") {
		t.Errorf("request id = %q, want a bag_drop_ prefix", res.RequestID)
	}

	stored := storedRequests(t, st)[res.RequestID]
	if stored.Type != model.RequestBagDrop {
		t.Errorf("type = %q", stored.Type)
	}
	if stored.Payload["bagCount"] != float64(2) {
		t.Errorf("bagCount payload = %v", stored.Payload["bagCount"])
	}
}

func TestSubmitBagDropForCheckedOutGuest(t *testing.T) {
	svc, st, _, _ := newTestService(t)

	seedGuest(t, st, model.BookingGuest{
		FirstName:    "Jane",
		CheckOutDate: "2026-03-10",
		CheckedOut:   true,
	})

	if _, err := svc.SubmitBagDrop(context.Background(), BagDropInput{Token: testToken, BagCount: 1}); err != nil {
		t.Fatalf("SubmitBagDrop for a checked-out guest: %v", err)
	}
}

func TestSubmitBagDropBeforeCheckout(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	// Default fixture guest checks out 2026-03-10, five days from now.
	_, err := svc.SubmitBagDrop(context.Background(), BagDropInput{Token: testToken, BagCount: 1})
	var pErr *PolicyError
	if !errors.As(err, &pErr) {
		t.Fatalf("err = %v, want a PolicyError before the checkout day", err)
	}
}

func TestSubmitBagDropSingleOpenRequest(t *testing.T) {
	svc, st, _, notifier := newTestService(t)
	ctx := context.Background()

	seedGuest(t, st, model.BookingGuest{FirstName: "Jane", CheckedOut: true})

	first, err := svc.SubmitBagDrop(ctx, BagDropInput{Token: testToken, BagCount: 2})
	if err != nil {
		t.Fatalf("first submission: %v", err)
	}

	// A different bag count is still the same open request.
	second, err := svc.SubmitBagDrop(ctx, BagDropInput{Token: testToken, BagCount: 5})
	if err != nil {
		t.Fatalf("resubmission: %v", err)
	}
	if !second.Deduplicated || second.RequestID != first.RequestID {
		t.Fatalf("resubmission = %+v, want dedupe onto %q", second, first.RequestID)
	}
	if len(notifier.calls) != 1 {
		t.Errorf("notifier called %d times, want 1", len(notifier.calls))
	}
}

func TestSubmitBagDropBagCountBounds(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, count := range []int{0, -1, 11} {
		_, err := svc.SubmitBagDrop(context.Background(), BagDropInput{Token: testToken, BagCount: count})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("bagCount %d: err = %v, want a ValidationError", count, err)
		}
	}
}

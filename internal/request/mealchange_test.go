package request

import (
	"context"
	"errors"
	"strings"
	"testing"

	"core/internal/model"
)

func TestSubmitMealChangeForToday(t *testing.T) {
	svc, st, _, _ := newTestService(t)

	res, err := svc.SubmitMealChange(context.Background(), MealChangeInput{
		Token:         testToken,
		ServiceDate:   "2026-03-05",
		RequestedPlan: "half_board",
	})
	if err != nil {
		t.Fatalf("SubmitMealChange: %v", err)
	}
	if !strings.HasPrefix(res.RequestID, "meal_change_exception_") {
		t.Errorf("request id = %q, want a meal_change_exception_ prefix", res.RequestID)
	}

	stored := storedRequests(t, st)[res.RequestID]
	if stored.Type != model.RequestMealChangeExcept {
		t.Errorf("type = %q", stored.Type)
	}
	if stored.Payload["requestedPlan"] != "half_board" || stored.Payload["currentPlan"] != "breakfast" {
		t.Errorf("payload = %v", stored.Payload)
	}
}

func TestSubmitMealChangeFutureDateIsSelfService(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.SubmitMealChange(context.Background(), MealChangeInput{
		Token:         testToken,
		ServiceDate:   "2026-03-06",
		RequestedPlan: "none",
	})
	var pErr *PolicyError
	if !errors.As(err, &pErr) {
		t.Fatalf("err = %v, want a PolicyError for a future service day", err)
	}
}

func TestSubmitMealChangePastDateRejected(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.SubmitMealChange(context.Background(), MealChangeInput{
		Token:         testToken,
		ServiceDate:   "2026-03-04",
		RequestedPlan: "none",
	})
	var pErr *PolicyError
	if !errors.As(err, &pErr) {
		t.Fatalf("err = %v, want a PolicyError for a past service day", err)
	}
	if !strings.Contains(pErr.Msg, "reception") {
		t.Fatalf("msg = %q, want the guest pointed at reception", pErr.Msg)
	}
}

func TestSubmitMealChangeUnknownPlan(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.SubmitMealChange(context.Background(), MealChangeInput{
		Token:         testToken,
		ServiceDate:   "2026-03-05",
		RequestedPlan: "full_board",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want a ValidationError for an unknown plan", err)
	}
}

func TestSubmitMealChangeDeduplicatesPerServiceDay(t *testing.T) {
	svc, _, _, notifier := newTestService(t)
	ctx := context.Background()

	in := MealChangeInput{Token: testToken, ServiceDate: "2026-03-05", RequestedPlan: "none"}

	first, err := svc.SubmitMealChange(ctx, in)
	if err != nil {
		t.Fatalf("first submission: %v", err)
	}
	second, err := svc.SubmitMealChange(ctx, in)
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

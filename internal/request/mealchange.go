package request

import (
	"context"
	"unicode/utf8"

	"core/internal/model"
)

// MealChangeInput asks for a meal-plan change on a given service day.
type MealChangeInput struct {
	Token         string `json:"token"`
	ServiceDate   string `json:"serviceDate"`
	RequestedPlan string `json:"requestedPlan"`
	Note          string `json:"note"`
}

var knownMealPlans = map[string]bool{
	"none":       true,
	"breakfast":  true,
	"half_board": true,
}

// SubmitMealChange handles a meal-plan change for a service day that
// has already started. Changes ahead of the service day are
// self-service in plan settings; once the day arrives the kitchen has
// committed, so the change becomes a staff exception request instead of
// a silent rejection.
func (s *Service) SubmitMealChange(ctx context.Context, in MealChangeInput) (Result, error) {
	if !validDate(in.ServiceDate) {
		return Result{}, &ValidationError{Msg: "serviceDate must be a YYYY-MM-DD date"}
	}
	if !knownMealPlans[in.RequestedPlan] {
		return Result{}, &ValidationError{Msg: "requestedPlan must be one of none, breakfast, half_board"}
	}
	if utf8.RuneCountInString(in.Note) > maxNoteLength {
		return Result{}, &ValidationError{Msg: "note must be 500 characters or fewer"}
	}

	session, guest, err := s.resolveSession(ctx, in.Token)
	if err != nil {
		return Result{}, err
	}

	allowed, err := s.Window.Allow(ctx, "meal-change", session.GuestUUID, rateLimitPerHour, rateLimitWindow)
	if err != nil {
		return Result{}, err
	}
	if !allowed {
		return Result{}, ErrRateLimited
	}

	if prior, found, err := s.Window.Lookup(ctx, "meal-change", session.GuestUUID, in.ServiceDate); err != nil {
		return Result{}, err
	} else if found {
		return Result{
			RequestID:    prior,
			Deduplicated: true,
			DeliveryMode: notifyModeNone,
			Message:      "meal change request already submitted",
		}, nil
	}

	today := s.today()
	if in.ServiceDate > today {
		return Result{}, &PolicyError{Msg: "changes before the service day can be made in plan settings"}
	}
	if in.ServiceDate < today {
		return Result{}, &PolicyError{Msg: "the service day has already passed, please speak to reception"}
	}

	now := s.Clock.Now()
	req := model.PrimeRequest{
		RequestID: model.NewRequestID(model.RequestMealChangeExcept, now),
		Type:      model.RequestMealChangeExcept,
		Status:    model.RequestStatusPending,
		BookingID: session.BookingID,
		GuestUUID: session.GuestUUID,
		GuestName: guest.FirstName,
		Note:      in.Note,
		Payload: map[string]interface{}{
			"serviceDate":   in.ServiceDate,
			"requestedPlan": in.RequestedPlan,
			"currentPlan":   guest.MealPlan,
		},
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	mode, err := s.create(ctx, req, guest)
	if err != nil {
		return Result{}, err
	}

	s.markDedupe(ctx, "meal-change", session.GuestUUID, in.ServiceDate, req.RequestID)

	return Result{
		RequestID:    req.RequestID,
		DeliveryMode: mode,
		Message:      "meal change exception submitted for staff review",
	}, nil
}

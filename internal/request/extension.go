package request

import (
	"context"
	"unicode/utf8"

	"core/internal/model"
)

// ExtensionInput is the guest submission for staying longer.
type ExtensionInput struct {
	Token                 string `json:"token"`
	RequestedCheckOutDate string `json:"requestedCheckOutDate"`
	Note                  string `json:"note"`
}

// SubmitExtension handles a stay-extension request end to end.
// Identical resubmissions inside the dedupe window collapse onto the
// first created record; distinct requested dates are independent.
func (s *Service) SubmitExtension(ctx context.Context, in ExtensionInput) (Result, error) {
	if !validDate(in.RequestedCheckOutDate) {
		return Result{}, &ValidationError{Msg: "requestedCheckOutDate must be a YYYY-MM-DD date"}
	}
	if utf8.RuneCountInString(in.Note) > maxNoteLength {
		return Result{}, &ValidationError{Msg: "note must be 500 characters or fewer"}
	}

	session, guest, err := s.resolveSession(ctx, in.Token)
	if err != nil {
		return Result{}, err
	}

	allowed, err := s.Window.Allow(ctx, "extension", session.GuestUUID, rateLimitPerHour, rateLimitWindow)
	if err != nil {
		return Result{}, err
	}
	if !allowed {
		return Result{}, ErrRateLimited
	}

	if prior, found, err := s.Window.Lookup(ctx, "extension", session.GuestUUID, in.RequestedCheckOutDate); err != nil {
		return Result{}, err
	} else if found {
		return Result{
			RequestID:    prior,
			Deduplicated: true,
			DeliveryMode: notifyModeNone,
			Message:      "extension request already submitted",
		}, nil
	}

	// ISO dates compare lexicographically; the requested date must be
	// strictly after the current checkout.
	if guest.CheckOutDate == "" || in.RequestedCheckOutDate <= guest.CheckOutDate {
		return Result{}, &PolicyError{Msg: "requested checkout date must be after the current checkout date"}
	}

	now := s.Clock.Now()
	req := model.PrimeRequest{
		RequestID: model.NewRequestID(model.RequestExtension, now),
		Type:      model.RequestExtension,
		Status:    model.RequestStatusPending,
		BookingID: session.BookingID,
		GuestUUID: session.GuestUUID,
		GuestName: guest.FirstName,
		Note:      in.Note,
		Payload: map[string]interface{}{
			"requestedCheckOutDate": in.RequestedCheckOutDate,
			"currentCheckOutDate":   guest.CheckOutDate,
		},
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	mode, err := s.create(ctx, req, guest)
	if err != nil {
		return Result{}, err
	}

	s.markDedupe(ctx, "extension", session.GuestUUID, in.RequestedCheckOutDate, req.RequestID)

	return Result{
		RequestID:    req.RequestID,
		DeliveryMode: mode,
		Message:      "extension request submitted",
	}, nil
}

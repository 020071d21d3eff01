package request

import (
	"context"
	"unicode/utf8"

	"core/internal/model"
)

// BagDropInput is the guest submission for storing luggage after
// checkout.
type BagDropInput struct {
	Token    string `json:"token"`
	BagCount int    `json:"bagCount"`
	Note     string `json:"note"`
}

const maxBagCount = 10

// SubmitBagDrop handles a bag-storage request. Bags are only stored
// once checkout has happened, and a guest has at most one open bag-drop
// request at a time.
func (s *Service) SubmitBagDrop(ctx context.Context, in BagDropInput) (Result, error) {
	if in.BagCount < 1 || in.BagCount > maxBagCount {
		return Result{}, &ValidationError{Msg: "bagCount must be between 1 and 10"}
	}
	if utf8.RuneCountInString(in.Note) > maxNoteLength {
		return Result{}, &ValidationError{Msg: "note must be 500 characters or fewer"}
	}

	session, guest, err := s.resolveSession(ctx, in.Token)
	if err != nil {
		return Result{}, err
	}

	allowed, err := s.Window.Allow(ctx, "bag-drop", session.GuestUUID, rateLimitPerHour, rateLimitWindow)
	if err != nil {
		return Result{}, err
	}
	if !allowed {
		return Result{}, ErrRateLimited
	}

	// Dedupe on active state: the marker lives while the guest already
	// has an open bag-drop request, whatever the bag count.
	if prior, found, err := s.Window.Lookup(ctx, "bag-drop", session.GuestUUID, ""); err != nil {
		return Result{}, err
	} else if found {
		return Result{
			RequestID:    prior,
			Deduplicated: true,
			DeliveryMode: notifyModeNone,
			Message:      "bag drop request already open",
		}, nil
	}

	if !guest.CheckedOut && (guest.CheckOutDate == "" || guest.CheckOutDate > s.today()) {
		return Result{}, &PolicyError{Msg: "bag storage is available from your checkout day"}
	}

	now := s.Clock.Now()
	req := model.PrimeRequest{
		RequestID: model.NewRequestID(model.RequestBagDrop, now),
		Type:      model.RequestBagDrop,
		Status:    model.RequestStatusPending,
		BookingID: session.BookingID,
		GuestUUID: session.GuestUUID,
		GuestName: guest.FirstName,
		Note:      in.Note,
		Payload: map[string]interface{}{
			"bagCount":     in.BagCount,
			"checkOutDate": guest.CheckOutDate,
		},
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	mode, err := s.create(ctx, req, guest)
	if err != nil {
		return Result{}, err
	}

	s.markDedupe(ctx, "bag-drop", session.GuestUUID, "", req.RequestID)

	return Result{
		RequestID:    req.RequestID,
		DeliveryMode: mode,
		Message:      "bag drop request submitted",
	}, nil
}

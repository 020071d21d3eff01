// Package request implements the guest-facing submission flows:
// stay extensions, bag drops, meal-change exceptions and check-in code
// allocation. Every flow follows the same skeleton: validate, resolve
// the session, rate-limit, dedupe, check the business rule, write the
// request atomically, notify staff best-effort.
package request

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"core/internal/clock"
	"core/internal/model"
	"core/internal/store"
)

const (
	maxNoteLength = 500

	rateLimitPerHour = 3
	rateLimitWindow  = time.Hour
	dedupeTTL        = 10 * time.Minute
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidationError is a malformed-input client error; no store access
// has happened when one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PolicyError is a well-formed request the rules reject.
type PolicyError struct {
	Msg string
}

func (e *PolicyError) Error() string { return e.Msg }

var (
	// ErrSessionInvalid covers a missing, unknown or expired guest token.
	ErrSessionInvalid = errors.New("guest session is missing or expired")
	// ErrRateLimited rejects a guest over the submission rate limit.
	ErrRateLimited = errors.New("too many requests, try again later")
)

// StaffNotifier tells the property about a new request and reports the
// achieved delivery mode.
type StaffNotifier interface {
	RequestCreated(ctx context.Context, req model.PrimeRequest, guest model.BookingGuest) string
}

// AuditRecorder mirrors accepted submissions for staff reporting.
type AuditRecorder interface {
	RecordRequest(req model.PrimeRequest, deliveryMode string)
}

// Result is the success shape shared by all submission flows.
type Result struct {
	RequestID    string `json:"requestId"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
	DeliveryMode string `json:"deliveryMode"`
	Message      string `json:"message"`
}

// Service carries the submission flows' collaborators explicitly.
type Service struct {
	Store    store.Client
	Window   store.Window
	Clock    clock.Clock
	Notifier StaffNotifier
	Audit    AuditRecorder // optional

	newCode func() string
}

func NewService(st store.Client, w store.Window, clk clock.Clock, notifier StaffNotifier) *Service {
	return &Service{
		Store:    st,
		Window:   w,
		Clock:    clk,
		Notifier: notifier,
		newCode:  randomCode,
	}
}

// resolveSession exchanges a guest token for the session and the slice
// of the booking the flows need.
func (s *Service) resolveSession(ctx context.Context, token string) (model.GuestSession, model.BookingGuest, error) {
	var session model.GuestSession
	var guest model.BookingGuest

	if token == "" {
		return session, guest, &ValidationError{Msg: "token is required"}
	}

	found, err := s.Store.Get(ctx, store.SessionPath(token), &session)
	if err != nil {
		return session, guest, fmt.Errorf("read guest session: %w", err)
	}
	if !found || session.Expired(s.Clock.Now()) {
		return session, guest, ErrSessionInvalid
	}

	found, err = s.Store.Get(ctx, store.BookingGuestPath(session.BookingID, session.GuestUUID), &guest)
	if err != nil {
		return session, guest, fmt.Errorf("read booking guest: %w", err)
	}
	if !found {
		return session, guest, ErrSessionInvalid
	}

	return session, guest, nil
}

// create persists the request under its four index paths in one
// multi-path write and notifies staff. Notification failure never rolls
// the request back: the record is the durable source of truth.
func (s *Service) create(ctx context.Context, req model.PrimeRequest, guest model.BookingGuest) (string, error) {
	if err := s.Store.Update(ctx, "", req.FanOut()); err != nil {
		return "", fmt.Errorf("persist prime request %s: %w", req.RequestID, err)
	}

	mode := notifyModeNone
	if s.Notifier != nil {
		mode = s.Notifier.RequestCreated(ctx, req, guest)
	}
	if s.Audit != nil {
		s.Audit.RecordRequest(req, mode)
	}

	logrus.WithFields(logrus.Fields{
		"request_id":    req.RequestID,
		"request_type":  req.Type,
		"guest_uuid":    req.GuestUUID,
		"delivery_mode": mode,
	}).Info("Prime request created")

	return mode, nil
}

const notifyModeNone = "none"

func (s *Service) markDedupe(ctx context.Context, purpose, identity, discriminator, requestID string) {
	if err := s.Window.Mark(ctx, purpose, identity, discriminator, requestID, dedupeTTL); err != nil {
		// The record exists either way; a lost marker only means a
		// duplicate resubmission could create a second record.
		logrus.WithError(err).WithField("request_id", requestID).Warn("Failed to write dedupe marker")
	}
}

// validDate reports whether v is a real ISO YYYY-MM-DD date.
func validDate(v string) bool {
	if !isoDate.MatchString(v) {
		return false
	}
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}

func (s *Service) today() string {
	return s.Clock.Now().UTC().Format("2006-01-02")
}

package queue

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"core/internal/clock"
	"core/internal/model"
	"core/internal/store"
)

// invalidRecordError is the fixed message persisted when a queue record
// fails schema validation; it distinguishes "we never tried to send
// this" from provider failures.
const invalidRecordError = "queue record failed validation"

// DispatchResult is returned to the trigger for observability.
type DispatchResult struct {
	EventID    string          `json:"eventId"`
	EventType  model.EventType `json:"eventType,omitempty"`
	Outcome    Outcome         `json:"outcome"`
	Reason     string          `json:"reason,omitempty"`
	Transition *Transition     `json:"transition,omitempty"`
}

// Dispatcher orchestrates processor and store for one event at a time:
// fetch, validate, guard against re-processing, deliver, persist.
type Dispatcher struct {
	Store    store.Client
	Deliver  DeliveryFunc
	Classify Classifier
	Clock    clock.Clock
	// EventTypes limits what this dispatcher handles; nil means every
	// known type.
	EventTypes map[model.EventType]bool
}

func NewDispatcher(st store.Client, deliver DeliveryFunc) *Dispatcher {
	return &Dispatcher{
		Store:    st,
		Deliver:  deliver,
		Classify: Classify,
		Clock:    clock.System{},
	}
}

func (d *Dispatcher) supports(t model.EventType) bool {
	if d.EventTypes == nil {
		return model.KnownEventTypes[t]
	}
	return d.EventTypes[t]
}

// Dispatch processes the queue record for eventID. An error return
// means the store itself failed; every queue-level condition (missing,
// invalid, already handled) comes back as an outcome instead.
func (d *Dispatcher) Dispatch(ctx context.Context, eventID string) (DispatchResult, error) {
	res := DispatchResult{EventID: eventID}
	path := store.QueueRecordPath(eventID)

	var rec model.QueueRecord
	found, err := d.Store.Get(ctx, path, &rec)
	if err != nil {
		return res, fmt.Errorf("read queue record %s: %w", eventID, err)
	}
	if !found {
		// Double-invocation after a manual delete is tolerated.
		res.Outcome = OutcomeMissing
		res.Reason = "no record at " + path
		return res, nil
	}
	if rec.EventID == "" {
		rec.EventID = eventID
	}
	res.EventType = rec.EventType

	if err := rec.Validate(); err != nil {
		// Terminal: a malformed record must not be retried forever.
		now := d.Clock.Now()
		msg := invalidRecordError
		t := &Transition{
			Status:      model.QueueFailed,
			RetryCount:  1,
			LastError:   &msg,
			ProcessedAt: &now,
		}
		if perr := d.persist(ctx, path, t); perr != nil {
			return res, perr
		}
		logrus.WithError(err).WithField("event_id", eventID).Error("Queue record failed validation, marked failed")
		res.Outcome = OutcomeInvalid
		res.Reason = err.Error()
		res.Transition = t
		return res, nil
	}

	if !d.supports(rec.EventType) {
		res.Outcome = OutcomeUnsupported
		res.Reason = "event type " + string(rec.EventType) + " not handled by this dispatcher"
		return res, nil
	}

	if rec.Status != model.QueuePending {
		res.Outcome = OutcomeIdempotent
		res.Reason = "status is " + string(rec.Status)
		return res, nil
	}

	// Mark processing before delivery to narrow the window in which a
	// duplicate trigger also attempts delivery. This is read-then-write,
	// not compare-and-swap: concurrent triggers can still race, which is
	// the documented at-least-once trade-off.
	if err := d.Store.Update(ctx, path, map[string]interface{}{
		"status":    model.QueueProcessing,
		"lastError": nil,
	}); err != nil {
		return res, fmt.Errorf("mark queue record %s processing: %w", eventID, err)
	}

	result := ProcessRecord(ctx, rec, ProcessorDeps{
		Deliver:    d.Deliver,
		Classify:   d.Classify,
		Clock:      d.Clock,
		EventTypes: d.EventTypes,
	})

	if result.Transition != nil {
		if err := d.persist(ctx, path, result.Transition); err != nil {
			return res, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"event_id":   eventID,
		"event_type": rec.EventType,
		"outcome":    result.Outcome,
	}).Info("Queue record dispatched")

	res.Outcome = result.Outcome
	res.Reason = result.Reason
	res.Transition = result.Transition
	return res, nil
}

func (d *Dispatcher) persist(ctx context.Context, path string, t *Transition) error {
	err := d.Store.Update(ctx, path, map[string]interface{}{
		"status":      t.Status,
		"retryCount":  t.RetryCount,
		"lastError":   t.LastError,
		"processedAt": t.ProcessedAt,
	})
	if err != nil {
		return fmt.Errorf("persist queue transition at %s: %w", path, err)
	}
	return nil
}

package queue

import (
	"context"
	"encoding/json"
	"time"

	"core/internal/clock"
	"core/internal/model"
)

// Outcome is the result category of handling one queue record.
type Outcome string

const (
	OutcomeSent        Outcome = "sent"
	OutcomeRetry       Outcome = "retry"
	OutcomeFailed      Outcome = "failed"
	OutcomeIdempotent  Outcome = "idempotent"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeMissing     Outcome = "missing"
	OutcomeInvalid     Outcome = "invalid"
)

// Transition describes the mutation the dispatcher should persist.
// LastError and ProcessedAt are written even when nil so successful
// transitions clear stale failure fields.
type Transition struct {
	Status      model.QueueStatus `json:"status"`
	RetryCount  int               `json:"retryCount"`
	LastError   *string           `json:"lastError"`
	ProcessedAt *time.Time        `json:"processedAt"`
}

// DeliveryFunc performs the actual send for one record. It is the one
// boundary allowed to signal failure by error; the classifier inspects
// whatever it returns.
type DeliveryFunc func(ctx context.Context, payload json.RawMessage, rec model.QueueRecord) error

// ProcessorDeps carries the injectable collaborators of ProcessRecord.
type ProcessorDeps struct {
	Deliver  DeliveryFunc
	Classify Classifier
	Clock    clock.Clock
	// EventTypes limits which event types this processor handles; nil
	// means every known type. Multiple processors can then coexist per
	// event type without stepping on each other.
	EventTypes map[model.EventType]bool
}

// ProcessResult pairs the outcome with the intended transition, if any.
type ProcessResult struct {
	Outcome    Outcome
	Reason     string
	Transition *Transition
}

func (d ProcessorDeps) supports(t model.EventType) bool {
	if d.EventTypes == nil {
		return model.KnownEventTypes[t]
	}
	return d.EventTypes[t]
}

// ProcessRecord computes the next state for one queue record given a
// delivery attempt. It never touches the store itself: the caller owns
// all I/O and applies the returned transition.
func ProcessRecord(ctx context.Context, rec model.QueueRecord, deps ProcessorDeps) ProcessResult {
	if !deps.supports(rec.EventType) {
		return ProcessResult{
			Outcome: OutcomeUnsupported,
			Reason:  "event type " + string(rec.EventType) + " not handled by this processor",
		}
	}

	if rec.Status != model.QueuePending {
		return ProcessResult{
			Outcome: OutcomeIdempotent,
			Reason:  "status is " + string(rec.Status),
		}
	}

	err := deps.Deliver(ctx, rec.Payload, rec)
	now := deps.Clock.Now()

	if err == nil {
		return ProcessResult{
			Outcome: OutcomeSent,
			Transition: &Transition{
				Status:      model.QueueSent,
				RetryCount:  rec.RetryCount,
				LastError:   nil,
				ProcessedAt: &now,
			},
		}
	}

	msg := err.Error()
	if deps.Classify(err) == ClassPermanent {
		return ProcessResult{
			Outcome: OutcomeFailed,
			Reason:  msg,
			Transition: &Transition{
				Status:      model.QueueFailed,
				RetryCount:  rec.RetryCount + 1,
				LastError:   &msg,
				ProcessedAt: &now,
			},
		}
	}

	return ProcessResult{
		Outcome: OutcomeRetry,
		Reason:  msg,
		Transition: &Transition{
			Status:      model.QueuePending,
			RetryCount:  rec.RetryCount + 1,
			LastError:   &msg,
			ProcessedAt: nil,
		},
	}
}

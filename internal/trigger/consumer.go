// Package trigger feeds the dispatcher from the message bus, so the
// queue can be driven by a scheduler publishing event ids as well as by
// the HTTP endpoint. At-least-once delivery is fine here: dispatching
// is idempotent.
package trigger

import (
	"context"

	"github.com/sirupsen/logrus"

	"core/internal/audit"
	"core/internal/queue"
	"core/lib/kafka"
)

const consumerGroup = "messaging-queue-dispatcher"

// Message is the bus payload: just the event id to process.
type Message struct {
	EventID string `json:"eventId"`
}

type Consumer struct {
	Dispatcher *queue.Dispatcher
	Audit      *audit.Recorder
}

// Init registers the consumer on the trigger topic and starts it in the
// background. No-op when the bus is disabled.
func (t *Consumer) Init() {
	if !kafka.Enabled() {
		logrus.Info("Message bus disabled, queue triggers are HTTP-only")
		return
	}

	go func() {
		worker := kafka.NewWorker[Message](
			consumerGroup,
			[]string{kafka.TriggerTopic},
			3,
			func(ctx context.Context, msg kafka.Message[Message]) error {
				if msg.Value.EventID == "" {
					logrus.WithField("topic", msg.Topic).Warn("Trigger message without eventId, skipping")
					return nil
				}
				res, err := t.Dispatcher.Dispatch(ctx, msg.Value.EventID)
				if err != nil {
					// Store failure: leave the message uncommitted so it
					// is retried on the next poll.
					return err
				}
				t.Audit.RecordDispatch(res)
				return nil
			},
		)
		defer worker.Close()

		_ = worker.Run(context.Background())
	}()

	logrus.Info("Queue trigger consumer started")
}

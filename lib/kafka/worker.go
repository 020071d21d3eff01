package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Message[T any] struct {
	Topic   string
	Value   T
	Headers map[string]string
	Key     string
	Raw     kafka.Message
}

type Handler[T any] func(ctx context.Context, msg Message[T]) error

// Worker is a generic consumer loop: fetch, decode into T, hand to the
// handler, and commit the offset only after the handler succeeds. A
// failed message stays uncommitted and comes back on the next poll,
// which is fine for handlers that are idempotent (the dispatcher is).
// ReadMessage is deliberately avoided: in consumer-group mode it
// auto-commits before the handler runs.
type Worker[T any] struct {
	r         *kafka.Reader
	sem       chan struct{}
	unmarshal func([]byte, any) error
	handle    Handler[T]
}

func NewWorker[T any](group string, topics []string, concurrency int, handler Handler[T]) *Worker[T] {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     KafkaConfig.Brokers,
		GroupID:     group,
		GroupTopics: topics,
		MinBytes:    1e3,
		MaxBytes:    10e6,
	})
	return &Worker[T]{r: r, sem: make(chan struct{}, concurrency), unmarshal: json.Unmarshal, handle: handler}
}

func (w *Worker[T]) Run(ctx context.Context) error {
	for {
		m, err := w.r.FetchMessage(ctx)
		if err != nil {
			return err
		}
		w.sem <- struct{}{}
		go func(m kafka.Message) {
			defer func() { <-w.sem }()
			w.process(ctx, m, w.r.CommitMessages)
		}(m)
	}
}

// process handles one fetched message. The offset is committed in
// exactly two cases: the handler succeeded, or the payload cannot be
// decoded (redelivering it would fail identically forever).
func (w *Worker[T]) process(ctx context.Context, m kafka.Message, commit func(context.Context, ...kafka.Message) error) {
	var val T
	if err := w.unmarshal(m.Value, &val); err != nil {
		logrus.WithError(err).WithField("topic", m.Topic).Error("Failed to decode message, skipping")
		if err := commit(ctx, m); err != nil {
			logrus.WithError(err).WithField("topic", m.Topic).Warn("Failed to commit skipped message")
		}
		return
	}

	h := map[string]string{}
	for _, x := range m.Headers {
		h[string(x.Key)] = string(x.Value)
	}
	err := w.handle(ctx, Message[T]{
		Topic:   m.Topic,
		Value:   val,
		Key:     string(m.Key),
		Headers: h,
		Raw:     m,
	})
	if err != nil {
		logrus.WithError(err).WithField("topic", m.Topic).Error("Message handler failed, leaving offset uncommitted")
		return
	}

	if err := commit(ctx, m); err != nil {
		logrus.WithError(err).WithField("topic", m.Topic).Warn("Failed to commit message offset")
	}
}

func (w *Worker[T]) Close() error { return w.r.Close() }

package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"core/app"
	"core/internal/audit"
	"core/internal/clock"
	"core/internal/handler"
	"core/internal/notify"
	"core/internal/queue"
	"core/internal/request"
	"core/internal/store"
	"core/internal/trigger"
	"core/lib/fcm"
	"core/lib/kafka"
	"core/router"
)

func main() {
	app.Setup()

	fmt.Println("*************** SETUP KAFKA ***************")
	kafka.Setup()
	if kafka.Enabled() {
		for _, topic := range []string{kafka.TriggerTopic, kafka.PrimeRequestTopic} {
			if err := kafka.CreateTopic(topic, 3, 1); err != nil {
				logrus.WithError(err).WithField("topic", topic).Warn("Failed to create topic")
			}
		}
	}

	ctx := context.Background()

	var st store.Client
	if app.Store.DatabaseURL != "" {
		fb, err := store.NewFirebase(ctx, app.Store.DatabaseURL, app.Store.CredentialsFile)
		if err != nil {
			logrus.Fatal("Failed to connect to store:", err)
		}
		st = fb
	} else {
		logrus.Warn("STORE_DATABASE_URL is not set, using in-memory store")
		st = store.NewMemory()
	}

	mailer := notify.NewMailer(app.Mail.RelayURL, app.Mail.RelayAPIKey, app.Mail.FromAddress)

	var push notify.Pusher
	if app.Store.CredentialsFile != "" {
		client, err := fcm.Setup(ctx, app.Store.CredentialsFile)
		if err != nil {
			logrus.WithError(err).Warn("Push notifications disabled")
		} else {
			push = client
		}
	}

	var publisher notify.Publisher
	if kafka.Enabled() {
		publisher = kafka.NewProducer()
	}

	staffNotifier := &notify.Staff{
		Mailer:     mailer,
		StaffEmail: app.Mail.StaffInbox,
		Publisher:  publisher,
		Topic:      kafka.PrimeRequestTopic,
		Push:       push,
		Store:      st,
	}

	recorder := audit.NewRecorder(app.Database.DB)

	// Lifecycle emails are the delivery channel for every queue event
	// type this service knows about.
	dispatcher := queue.NewDispatcher(st, mailer.DeliverQueueEvent)

	svc := request.NewService(st, store.Window{Store: st, Clock: clock.System{}}, clock.System{}, staffNotifier)
	svc.Audit = recorder

	// Bus-driven triggers, alongside the HTTP endpoint.
	consumer := &trigger.Consumer{Dispatcher: dispatcher, Audit: recorder}
	consumer.Init()

	router.Setup(&handler.API{
		Dispatcher: dispatcher,
		Requests:   svc,
		Store:      st,
		Audit:      recorder,
	})
}

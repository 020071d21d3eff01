package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging for staff device push.
type Client struct {
	client *messaging.Client
}

// Setup initializes the messaging client from a credentials file.
func Setup(ctx context.Context, credentialsPath string) (*Client, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %v", err)
	}

	logrus.Info("Firebase Cloud Messaging initialized successfully")
	return &Client{client: messagingClient}, nil
}

// SendNotification pushes one message to a single device token.
func (c *Client) SendNotification(ctx context.Context, token string, title string, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	_, err := c.client.Send(ctx, msg)
	return err
}

// SendNotificationMulti pushes the same message to every token, sending
// to whichever devices it can and logging the rest.
func (c *Client) SendNotificationMulti(ctx context.Context, tokens []string, title string, body string, data map[string]string) error {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	resp, err := c.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return err
	}
	if resp.FailureCount > 0 {
		logrus.WithFields(logrus.Fields{
			"success_count": resp.SuccessCount,
			"failure_count": resp.FailureCount,
		}).Warn("Some staff push deliveries failed")
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const defaultStoreTimeout = 10 * time.Second

// Firebase backs Client with a Realtime Database instance.
type Firebase struct {
	client  *db.Client
	timeout time.Duration
}

// NewFirebase connects to the database at databaseURL. credentialsFile
// may be empty when ambient credentials are available.
func NewFirebase(ctx context.Context, databaseURL, credentialsFile string) (*Firebase, error) {
	conf := &firebase.Config{DatabaseURL: databaseURL}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, err
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, err
	}

	logrus.WithField("database_url", databaseURL).Info("Store connection established")
	return &Firebase{client: client, timeout: defaultStoreTimeout}, nil
}

func (f *Firebase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, f.timeout)
}

func (f *Firebase) Get(ctx context.Context, path string, into interface{}) (bool, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	var raw json.RawMessage
	if err := f.client.NewRef(path).Get(ctx, &raw); err != nil {
		return false, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	return true, json.Unmarshal(raw, into)
}

func (f *Firebase) Set(ctx context.Context, path string, value interface{}) error {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	return f.client.NewRef(path).Set(ctx, value)
}

func (f *Firebase) Update(ctx context.Context, path string, values map[string]interface{}) error {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	return f.client.NewRef(path).Update(ctx, values)
}

func (f *Firebase) Delete(ctx context.Context, path string) error {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	return f.client.NewRef(path).Delete(ctx)
}

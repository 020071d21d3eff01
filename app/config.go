package app

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Config is the application configuration structure
type (
	AppConfig struct {
		Store    StoreConfig
		Database DatabaseConfig
		Logging  LoggingConfig
		Mail     MailConfig
	}

	// StoreConfig points at the guest-operations document store.
	StoreConfig struct {
		DatabaseURL     string `envconfig:"STORE_DATABASE_URL"`
		CredentialsFile string `envconfig:"STORE_CREDENTIALS_FILE"`
	}

	// MailConfig points at the outbound mail relay.
	MailConfig struct {
		RelayURL    string `envconfig:"MAIL_RELAY_URL"`
		RelayAPIKey string `envconfig:"MAIL_RELAY_API_KEY"`
		FromAddress string `envconfig:"MAIL_FROM_ADDRESS" default:"stay@example.com"`
		StaffInbox  string `envconfig:"STAFF_NOTIFY_EMAIL"`
	}
)

var (
	Logging  *LoggingConfig
	Database *DatabaseConfig
	Store    *StoreConfig
	Mail     *MailConfig
)

func Setup() {

	if err := godotenv.Load(".env"); err != nil {
		fmt.Println("Error loading .env file:", err)
	}

	conf := &AppConfig{}
	if err := envconfig.Process("", conf); err != nil {
		logrus.Fatal("Failed to process configuration:", err)
	}

	conf.Logging.Setup()
	conf.Database.Setup()

	Logging = &conf.Logging
	Database = &conf.Database
	Store = &conf.Store
	Mail = &conf.Mail
}

func Config(key string) string {
	return os.Getenv(key)
}

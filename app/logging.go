package app

import (
	"github.com/sirupsen/logrus"
)

type LoggingConfig struct {
	Type       string `envconfig:"LOG_TYPE"`
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	ServerName string `envconfig:"SERVER_NAME" default:"guest-ops"`
}

// Setup configures the process-wide logrus logger.
func (logConf *LoggingConfig) Setup() {
	if logConf.Type == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(logConf.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	logrus.WithField("server", logConf.ServerName).Info("Logging configured")
}

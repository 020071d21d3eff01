package kafka

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"core/app"
)

// Topics of the guest-operations back-channel.
const (
	TriggerTopic      = "messaging-queue-triggers"
	PrimeRequestTopic = "prime-request-events"
)

type Config struct {
	Brokers []string
	GroupID string
	// Disabled is set when no brokers are configured or the initial
	// connection check fails; callers then skip the bus entirely.
	Disabled bool
}

var KafkaConfig *Config

// Setup reads broker config and probes the connection. The service
// stays useful without Kafka: triggers still arrive over HTTP and
// staff notification falls back to email only.
func Setup() {
	brokers := app.Config("KAFKA_BROKERS")
	KafkaConfig = &Config{
		GroupID: app.Config("KAFKA_GROUP_ID"),
	}

	if brokers == "" {
		KafkaConfig.Disabled = true
		logrus.Warn("KAFKA_BROKERS is not set, message bus disabled")
		return
	}
	KafkaConfig.Brokers = strings.Split(brokers, ",")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := kafka.DialContext(ctx, "tcp", KafkaConfig.Brokers[0])
	if err != nil {
		KafkaConfig.Disabled = true
		logrus.WithError(err).Warn("Kafka connection check failed, message bus disabled")
		return
	}
	conn.Close()

	logrus.WithField("brokers", KafkaConfig.Brokers).Info("Kafka connection established")
}

// Enabled reports whether the bus can be used.
func Enabled() bool {
	return KafkaConfig != nil && !KafkaConfig.Disabled
}

package kafka

import (
	"fmt"

	"github.com/segmentio/kafka-go"
)

// CreateTopic ensures a back-channel topic exists, going through the
// cluster controller. Existing topics are not an error, so this is safe
// to run on every boot.
func CreateTopic(topic string, partitions int, replicationFactor int) error {
	if !Enabled() {
		return fmt.Errorf("message bus is disabled")
	}

	conn, err := kafka.Dial("tcp", KafkaConfig.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("resolve controller: %w", err)
	}

	controllerConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer controllerConn.Close()

	return controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	})
}

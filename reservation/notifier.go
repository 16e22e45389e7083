package reservation

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"github.com/sparklewash/booking-service/model"
)

// Notifier publishes booking lifecycle events for the notification worker.
type Notifier interface {
	Notify(req model.NotificationRequest) error
}

// KafkaNotifier publishes notification requests to the notification topic.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(writer *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) Notify(req model.NotificationRequest) error {
	msgBytes, err := json.Marshal(req)
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(req.BookingData.BookingID),
			Value: msgBytes,
		})
}

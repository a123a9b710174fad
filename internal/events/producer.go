package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

const (
	TypeStudentEnrolled  = "student.enrolled"
	TypePaymentRecorded  = "payment.recorded"
	TypeAttendanceMarked = "attendance.marked"
)

// Event is the envelope written to the audit stream. Payload carries the
// entity that triggered the event.
type Event struct {
	Type       string      `json:"type"`
	RollNo     string      `json:"rollNo"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload,omitempty"`
}

// Producer writes domain events to Kafka, keyed by roll number so events for
// one student stay ordered within a partition.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewProducer(brokers []string, topic string, logger *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

func (p *Producer) Publish(event Event) error {
	valueBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RollNo),
		Value: sarama.ByteEncoder(valueBytes),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("failed to send event to kafka", "error", err)
		return err
	}

	p.logger.Info("event sent to kafka", "topic", p.topic, "partition", partition, "offset", offset, "type", event.Type)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

package events

import (
	"context"
	"travelbook/pkg/kafka"
)

type KafkaSink struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaSink(producer *kafka.Producer, source string) *KafkaSink {
	return &KafkaSink{producer: producer, source: source}
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Send(ctx context.Context, e Event) error {
	msg, err := kafka.NewMessage().
		WithKey(e.Subject).
		WithValue(e).
		WithEventID(e.ID).
		WithEventType(string(e.Type)).
		WithOrganizationID(e.OrganizationID).
		WithSource(s.source).
		WithTimestamp(e.OccurredAt).
		Build()
	if err != nil {
		return err
	}
	return s.producer.Publish(ctx, msg)
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}

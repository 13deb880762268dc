package kafka_middleware

import (
	"context"
	"time"
	"travelbook/pkg/kafka"
	"travelbook/pkg/metrics"
)

// MetricsProducerMiddleware records publish outcomes and latency
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.KafkaPublishDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())

		outcome := "published"
		if err != nil {
			outcome = "failed"
		}
		metrics.KafkaMessages.WithLabelValues(msg.Topic, outcome).Inc()

		return err
	}
}

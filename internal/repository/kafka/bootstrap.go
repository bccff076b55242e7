package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BootstrapProducer makes sure the topic exists and returns a producer for it.
// A topic that cannot be confirmed is logged and left to auto creation.
func BootstrapProducer(ctx context.Context, cfg ProducerConfig, logger *zap.Logger) *Producer {
	if len(cfg.Brokers) > 0 {
		_ = EnsureTopic(ctx, cfg.Brokers, TopicSpec{
			Name:              cfg.Topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
			MaxWait:           5 * time.Second,
		}, logger)
	}
	return NewProducer(cfg).WithLogger(logger)
}

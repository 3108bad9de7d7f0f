package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lny-platform/product-catalog/internal/storage/mq"
)

// Service consumes relayed audit events from the message queue.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	for _, topic := range []string{TopicProductAdded, TopicProductDeleted} {
		if err := s.mqConsumer.RegisterHandler(
			topic,
			func(ctx context.Context, topic string, payload []byte) error {
				var ev ProductAuditEvent
				if err := json.Unmarshal(payload, &ev); err != nil {
					return fmt.Errorf("unmarshal product audit event: %w", err)
				}

				if err := s.handleProductAuditEvent(ctx, ev); err != nil {
					return fmt.Errorf("handle product audit event: %w", err)
				}

				return nil
			},
		); err != nil {
			return nil, fmt.Errorf("register handler for topic %s: %w", topic, err)
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

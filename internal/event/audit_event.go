package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/lny-platform/product-catalog/internal/model"
)

const (
	TopicProductAdded   = "catalog.product.added"
	TopicProductDeleted = "catalog.product.deleted"
)

// ProductAuditEvent mirrors an audit log entry for downstream consumers. It
// is written to the outbox in the same transaction as the product mutation
// and relayed to Kafka afterwards.
type ProductAuditEvent struct {
	ProductID int64             `json:"product_id"`
	Action    model.AuditAction `json:"action"`
	Name      string            `json:"name"`
	Price     float64           `json:"price"`
	Category  string            `json:"category"`
	Timestamp time.Time         `json:"timestamp"`
}

func (s *Service) handleProductAuditEvent(ctx context.Context, ev ProductAuditEvent) error {
	s.logger.InfoContext(ctx, "handling product audit event", slog.Any("event", ev))
	return nil
}

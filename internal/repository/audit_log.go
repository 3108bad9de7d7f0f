package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lny-platform/product-catalog/internal/model"
	"github.com/lny-platform/product-catalog/internal/storage/db"
)

type CreateAuditLogParams struct {
	Action          model.AuditAction
	ProductName     string
	ProductPrice    *float64
	ProductCategory *string
	Timestamp       time.Time
}

// AuditLogRepository persists the append-only action log. Rows are only ever
// inserted; nothing in the application updates or deletes them.
type AuditLogRepository interface {
	WithDB(db db.DB) AuditLogRepository
	CreateAuditLog(ctx context.Context, params CreateAuditLogParams) (model.AuditLog, error)
	ListAuditLogs(ctx context.Context) ([]model.AuditLog, error)
	ListRecentAuditLogs(ctx context.Context, limit int32) ([]model.AuditLog, error)
}

type auditLogRepository struct {
	db db.DB
}

func NewAuditLogRepository(db db.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r auditLogRepository) WithDB(db db.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r auditLogRepository) CreateAuditLog(ctx context.Context, params CreateAuditLogParams) (model.AuditLog, error) {
	var price *pgtype.Numeric
	if params.ProductPrice != nil {
		n, err := numericFromFloat(*params.ProductPrice)
		if err != nil {
			return model.AuditLog{}, fmt.Errorf("scan product price: %w", err)
		}
		price = &n
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO logs (action, product_name, product_price, product_category, timestamp)
		VALUES (@action, @product_name, @product_price, @product_category, @timestamp)
		RETURNING id, action, product_name, product_price, product_category, timestamp
	`, pgx.NamedArgs{
		"action":           string(params.Action),
		"product_name":     params.ProductName,
		"product_price":    price,
		"product_category": params.ProductCategory,
		"timestamp":        params.Timestamp,
	})

	entry, err := scanAuditLog(row)
	if err != nil {
		return model.AuditLog{}, fmt.Errorf("create audit log: %w", err)
	}

	return entry, nil
}

func (r auditLogRepository) ListAuditLogs(ctx context.Context) ([]model.AuditLog, error) {
	return r.list(ctx, `
		SELECT id, action, product_name, product_price, product_category, timestamp
		FROM logs
		ORDER BY timestamp DESC, id DESC
	`, nil)
}

func (r auditLogRepository) ListRecentAuditLogs(ctx context.Context, limit int32) ([]model.AuditLog, error) {
	return r.list(ctx, `
		SELECT id, action, product_name, product_price, product_category, timestamp
		FROM logs
		ORDER BY timestamp DESC, id DESC
		LIMIT @limit
	`, pgx.NamedArgs{"limit": limit})
}

func (r auditLogRepository) list(ctx context.Context, query string, args pgx.NamedArgs) ([]model.AuditLog, error) {
	var rows pgx.Rows
	var err error
	if args != nil {
		rows, err = r.db.Query(ctx, query, args)
	} else {
		rows, err = r.db.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditLog, 0)
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}

	return entries, nil
}

func scanAuditLog(row pgx.Row) (model.AuditLog, error) {
	var (
		entry  model.AuditLog
		action string
		price  *pgtype.Numeric
	)
	if err := row.Scan(&entry.ID, &action, &entry.ProductName, &price, &entry.ProductCategory, &entry.Timestamp); err != nil {
		return model.AuditLog{}, err
	}

	entry.Action = model.AuditAction(action)

	if price != nil {
		priceValue, err := price.Float64Value()
		if err != nil {
			return model.AuditLog{}, fmt.Errorf("convert product price to float64: %w", err)
		}
		if priceValue.Valid {
			entry.ProductPrice = &priceValue.Float64
		}
	}

	return entry, nil
}

package model

import (
	"fmt"
	"time"
)

// AuditAction is the kind of product mutation an audit entry records.
type AuditAction string

const (
	ActionAdded   AuditAction = "Added"
	ActionDeleted AuditAction = "Deleted"
)

// Validate implements the enum contract used by the validator package.
func (a AuditAction) Validate() error {
	switch a {
	case ActionAdded, ActionDeleted:
		return nil
	}
	return fmt.Errorf("unknown audit action: %s", a)
}

// AuditLog is an immutable record of a past Added/Deleted action. It carries
// a snapshot of the product as it existed at the moment of the mutation and
// is never updated or deleted afterwards.
type AuditLog struct {
	ID              int64       `json:"id"`
	Action          AuditAction `json:"action"`
	ProductName     string      `json:"product_name"`
	ProductPrice    *float64    `json:"product_price"`
	ProductCategory *string     `json:"product_category"`
	Timestamp       time.Time   `json:"timestamp"`
}

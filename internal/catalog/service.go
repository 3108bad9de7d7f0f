// Package catalog implements the catalog query and audit engine: CRUD over
// products, filtered/sorted/aggregated queries, and the guarantee that every
// successful add or delete commits together with its audit log entry and its
// outbox event in a single transaction.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lny-platform/product-catalog/internal/apperr"
	"github.com/lny-platform/product-catalog/internal/event"
	"github.com/lny-platform/product-catalog/internal/model"
	"github.com/lny-platform/product-catalog/internal/repository"
	"github.com/lny-platform/product-catalog/internal/storage/db"
	"github.com/lny-platform/product-catalog/pkg/outbox"
	"github.com/lny-platform/product-catalog/pkg/ptr"
	"github.com/lny-platform/product-catalog/pkg/validator"
	"github.com/lny-platform/product-catalog/pkg/zerror"
)

// recentActivityLimit is how many audit entries Stats reports.
const recentActivityLimit = 10

// Stats aggregates the current state of the catalog. Averages and sums cover
// currently stored products only; deleted products are excluded
// retroactively.
type Stats struct {
	TotalProducts  int64                     `json:"total_products"`
	Categories     []repository.CategoryStat `json:"categories"`
	RecentActivity []model.AuditLog          `json:"recent_activity"`
}

type Service interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) (model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (Stats, error)
	AuditTrail(ctx context.Context) ([]model.AuditLog, error)
}

type service struct {
	db            db.DB
	productRepo   repository.ProductRepository
	auditLogRepo  repository.AuditLogRepository
	outboxMsgRepo repository.OutboxMsgRepository
	validator     validator.Validator
}

func NewService(
	db db.DB,
	productRepo repository.ProductRepository,
	auditLogRepo repository.AuditLogRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	validator validator.Validator,
) Service {
	return &service{
		db:            db,
		productRepo:   productRepo,
		auditLogRepo:  auditLogRepo,
		outboxMsgRepo: outboxMsgRepo,
		validator:     validator,
	}
}

func (s *service) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, err
	}

	var product model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		product, err = s.productRepo.
			WithDB(db).
			CreateProduct(ctx, repository.CreateProductParams{
				Name:      strings.TrimSpace(params.Name),
				Price:     *params.Price,
				Category:  strings.TrimSpace(params.Category),
				CreatedAt: time.Now(),
			})
		if err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return s.recordAudit(ctx, db, model.ActionAdded, product)
	}); err != nil {
		return model.Product{}, storeErr(err)
	}

	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, storeErr(err)
	}

	return product, nil
}

func (s *service) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListProducts(ctx, repository.ListProductsParams{
		Category: params.Category,
		Sort:     params.Sort,
	})
	if err != nil {
		return nil, storeErr(err)
	}

	return products, nil
}

// UpdateProduct mutates only the supplied fields; id and created_at are
// immutable. Updates write no audit entry: only Added and Deleted actions
// are logged.
func (s *service) UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, err
	}

	repoParams := repository.UpdateProductParams{Price: params.Price}
	if params.Name != nil {
		repoParams.Name = ptr.New(strings.TrimSpace(*params.Name))
	}
	if params.Category != nil {
		repoParams.Category = ptr.New(strings.TrimSpace(*params.Category))
	}

	product, err := s.productRepo.UpdateProduct(ctx, id, repoParams)
	if err != nil {
		return model.Product{}, storeErr(err)
	}

	return product, nil
}

// DeleteProduct removes the product and returns the snapshot the audit entry
// was written from.
func (s *service) DeleteProduct(ctx context.Context, id int64) (model.Product, error) {
	var snapshot model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		snapshot, err = s.productRepo.WithDB(db).GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository get product: %w", err)
		}

		if err := s.productRepo.WithDB(db).DeleteProduct(ctx, id); err != nil {
			return fmt.Errorf("product repository delete product: %w", err)
		}

		return s.recordAudit(ctx, db, model.ActionDeleted, snapshot)
	}); err != nil {
		return model.Product{}, storeErr(err)
	}

	return snapshot, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, storeErr(err)
	}

	return categories, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	total, err := s.productRepo.CountProducts(ctx)
	if err != nil {
		return Stats{}, storeErr(err)
	}

	categories, err := s.productRepo.CategoryStats(ctx)
	if err != nil {
		return Stats{}, storeErr(err)
	}

	recent, err := s.auditLogRepo.ListRecentAuditLogs(ctx, recentActivityLimit)
	if err != nil {
		return Stats{}, storeErr(err)
	}

	return Stats{
		TotalProducts:  total,
		Categories:     categories,
		RecentActivity: recent,
	}, nil
}

func (s *service) AuditTrail(ctx context.Context) ([]model.AuditLog, error) {
	entries, err := s.auditLogRepo.ListAuditLogs(ctx)
	if err != nil {
		return nil, storeErr(err)
	}

	return entries, nil
}

// recordAudit appends the audit entry for a committed mutation and enqueues
// the matching outbox event. It must run inside the same transaction as the
// product write so the pair commits or rolls back as one unit.
func (s *service) recordAudit(ctx context.Context, db db.DB, action model.AuditAction, product model.Product) error {
	entry, err := s.auditLogRepo.
		WithDB(db).
		CreateAuditLog(ctx, repository.CreateAuditLogParams{
			Action:          action,
			ProductName:     product.Name,
			ProductPrice:    ptr.New(product.Price),
			ProductCategory: ptr.New(product.Category),
			Timestamp:       time.Now(),
		})
	if err != nil {
		return fmt.Errorf("audit log repository create audit log: %w", err)
	}

	topic := event.TopicProductAdded
	if action == model.ActionDeleted {
		topic = event.TopicProductDeleted
	}

	ev := event.ProductAuditEvent{
		ProductID: product.ID,
		Action:    action,
		Name:      product.Name,
		Price:     product.Price,
		Category:  product.Category,
		Timestamp: entry.Timestamp,
	}

	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(strconv.FormatInt(product.ID, 10)),
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

// storeErr classifies a failure from the store layer. Already-classified
// errors (not-found, validation) pass through; anything else is a store
// failure.
func storeErr(err error) error {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return err
	}
	return apperr.StoreErr.WrapParent(err)
}

package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lny-platform/product-catalog/internal/apperr"
	"github.com/lny-platform/product-catalog/internal/catalog"
	"github.com/lny-platform/product-catalog/internal/config"
	"github.com/lny-platform/product-catalog/internal/model"
	"github.com/lny-platform/product-catalog/internal/repository"
	"github.com/lny-platform/product-catalog/pkg/validator"
)

// fakeCatalogService validates incoming params with the real validator and
// serves canned data, so handler tests exercise the full error translation
// path without a database.
type fakeCatalogService struct {
	products  map[int64]model.Product
	auditLogs []model.AuditLog
	stats     catalog.Stats
	validate  validator.Validator
}

func newFakeCatalogService(t *testing.T, products ...model.Product) *fakeCatalogService {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	svc := &fakeCatalogService{products: map[int64]model.Product{}, validate: v}
	for _, p := range products {
		svc.products[p.ID] = p
	}
	return svc
}

func (s *fakeCatalogService) CreateProduct(_ context.Context, params catalog.CreateProductParams) (model.Product, error) {
	if err := s.validate.Validate(params); err != nil {
		return model.Product{}, err
	}
	p := model.Product{
		ID:        int64(len(s.products) + 1),
		Name:      strings.TrimSpace(params.Name),
		Price:     *params.Price,
		Category:  strings.TrimSpace(params.Category),
		CreatedAt: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
	}
	s.products[p.ID] = p
	return p, nil
}

func (s *fakeCatalogService) GetProduct(_ context.Context, id int64) (model.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	return p, nil
}

func (s *fakeCatalogService) ListProducts(_ context.Context, params catalog.ListProductsParams) ([]model.Product, error) {
	if err := s.validate.Validate(params); err != nil {
		return nil, err
	}
	out := []model.Product{}
	for _, p := range s.products {
		if params.Category == nil || p.Category == *params.Category {
			out = append(out, p)
		}
	}
	switch params.Sort {
	case repository.SortPriceAsc:
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case repository.SortPriceDesc:
		sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return out, nil
}

func (s *fakeCatalogService) UpdateProduct(_ context.Context, id int64, params catalog.UpdateProductParams) (model.Product, error) {
	if err := s.validate.Validate(params); err != nil {
		return model.Product{}, err
	}
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	if params.Name != nil {
		p.Name = strings.TrimSpace(*params.Name)
	}
	if params.Price != nil {
		p.Price = *params.Price
	}
	if params.Category != nil {
		p.Category = strings.TrimSpace(*params.Category)
	}
	s.products[id] = p
	return p, nil
}

func (s *fakeCatalogService) DeleteProduct(_ context.Context, id int64) (model.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	delete(s.products, id)
	return p, nil
}

func (s *fakeCatalogService) Categories(context.Context) ([]string, error) {
	return []string{"Lighting", "Furniture"}, nil
}

func (s *fakeCatalogService) Stats(context.Context) (catalog.Stats, error) {
	return s.stats, nil
}

func (s *fakeCatalogService) AuditTrail(context.Context) ([]model.AuditLog, error) {
	return s.auditLogs, nil
}

func newTestRouter(t *testing.T, apiKey string, products ...model.Product) (chi.Router, *fakeCatalogService) {
	t.Helper()

	catalogSvc := newFakeCatalogService(t, products...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(config.HTTP{}, config.Auth{APIKey: apiKey}, config.RateLimit{}, logger, catalogSvc, nil)

	r := chi.NewRouter()
	svc.RegisterHandlers(r)
	return r, catalogSvc
}

func doRequest(r chi.Router, method, target, apiKey string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

var testLamp = model.Product{
	ID:        1,
	Name:      "Test Lamp",
	Price:     29.99,
	Category:  "Lighting",
	CreatedAt: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
}

func TestProductRoutes(t *testing.T) {
	t.Run("Should create product and respond with 201", func(t *testing.T) {
		r, _ := newTestRouter(t, "")

		resp := doRequest(r, http.MethodPost, "/api/products", "",
			`{"name":"Test Lamp","price":29.99,"category":"Lighting"}`)

		require.Equal(t, http.StatusCreated, resp.Code)

		var body struct {
			Success bool          `json:"success"`
			Data    model.Product `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "Test Lamp", body.Data.Name)
		assert.Equal(t, 29.99, body.Data.Price)
		assert.NotZero(t, body.Data.ID)
	})

	t.Run("Should report every failed field on an invalid payload", func(t *testing.T) {
		r, _ := newTestRouter(t, "")

		resp := doRequest(r, http.MethodPost, "/api/products", "",
			`{"name":"   ","price":-5,"category":""}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)

		var body struct {
			Code    string `json:"code"`
			Details []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"details"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "validationError", body.Code)
		assert.Len(t, body.Details, 3)
	})

	t.Run("Should reject a non numeric price at decode time", func(t *testing.T) {
		r, _ := newTestRouter(t, "")

		resp := doRequest(r, http.MethodPost, "/api/products", "",
			`{"name":"Lamp","price":"abc","category":"Lighting"}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)

		var body struct {
			Code    string `json:"code"`
			Details []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"details"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, apperr.ValidationErrorCode, body.Code)
		require.Len(t, body.Details, 1)
		assert.Equal(t, "price", body.Details[0].Field)
	})

	t.Run("Should get product by id", func(t *testing.T) {
		r, _ := newTestRouter(t, "", testLamp)

		resp := doRequest(r, http.MethodGet, "/api/products/1", "", "")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"Test Lamp"`)
	})

	t.Run("Should respond 404 for missing product", func(t *testing.T) {
		r, _ := newTestRouter(t, "")

		resp := doRequest(r, http.MethodGet, "/api/products/404", "", "")

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), apperr.ProductNotFoundCode)
	})

	t.Run("Should respond 400 for non integer product id", func(t *testing.T) {
		r, _ := newTestRouter(t, "")

		resp := doRequest(r, http.MethodGet, "/api/products/lamp", "", "")

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "INVALID_PRODUCT_ID")
	})

	t.Run("Should list products with count", func(t *testing.T) {
		r, _ := newTestRouter(t, "", testLamp)

		resp := doRequest(r, http.MethodGet, "/api/products", "", "")

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Success bool            `json:"success"`
			Count   int             `json:"count"`
			Data    []model.Product `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, 1, body.Count)
		require.Len(t, body.Data, 1)
	})

	t.Run("Should sort by price in both directions", func(t *testing.T) {
		seeded := []model.Product{
			{ID: 1, Name: "A", Price: 100, Category: "Misc"},
			{ID: 2, Name: "B", Price: 10, Category: "Misc"},
			{ID: 3, Name: "C", Price: 50, Category: "Misc"},
		}
		r, _ := newTestRouter(t, "", seeded...)

		prices := func(target string) []float64 {
			resp := doRequest(r, http.MethodGet, target, "", "")
			require.Equal(t, http.StatusOK, resp.Code)

			var body struct {
				Data []model.Product `json:"data"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

			out := make([]float64, len(body.Data))
			for i, p := range body.Data {
				out[i] = p.Price
			}
			return out
		}

		assert.Equal(t, []float64{10, 50, 100}, prices("/api/products?sort=price_asc"))
		assert.Equal(t, []float64{100, 50, 10}, prices("/api/products?sort=price_desc"))
	})

	t.Run("Should reject unknown sort key", func(t *testing.T) {
		r, _ := newTestRouter(t, "")

		resp := doRequest(r, http.MethodGet, "/api/products?sort=name_asc", "", "")

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should update product partially", func(t *testing.T) {
		r, _ := newTestRouter(t, "", testLamp)

		resp := doRequest(r, http.MethodPut, "/api/products/1", "", `{"price":34.5}`)

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Data model.Product `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, 34.5, body.Data.Price)
		assert.Equal(t, "Test Lamp", body.Data.Name)
		assert.Equal(t, testLamp.CreatedAt, body.Data.CreatedAt)
	})

	t.Run("Should delete product and return snapshot", func(t *testing.T) {
		r, catalogSvc := newTestRouter(t, "", testLamp)

		resp := doRequest(r, http.MethodDelete, "/api/products/1", "", "")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"Test Lamp"`)
		assert.Empty(t, catalogSvc.products)
	})
}

func TestAPIKeyProtection(t *testing.T) {
	t.Run("Should reject mutating request without key", func(t *testing.T) {
		r, _ := newTestRouter(t, "secret")

		resp := doRequest(r, http.MethodPost, "/api/products", "",
			`{"name":"Lamp","price":1,"category":"Lighting"}`)

		require.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Contains(t, resp.Body.String(), "INVALID_API_KEY")
	})

	t.Run("Should accept mutating request with key", func(t *testing.T) {
		r, _ := newTestRouter(t, "secret")

		resp := doRequest(r, http.MethodPost, "/api/products", "secret",
			`{"name":"Lamp","price":1,"category":"Lighting"}`)

		assert.Equal(t, http.StatusCreated, resp.Code)
	})

	t.Run("Should leave read routes open", func(t *testing.T) {
		r, _ := newTestRouter(t, "secret", testLamp)

		resp := doRequest(r, http.MethodGet, "/api/products", "", "")

		assert.Equal(t, http.StatusOK, resp.Code)
	})
}

func TestCatalogRoutes(t *testing.T) {
	t.Run("Should list categories", func(t *testing.T) {
		r, _ := newTestRouter(t, "")

		resp := doRequest(r, http.MethodGet, "/api/categories", "", "")

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Count int      `json:"count"`
			Data  []string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, []string{"Lighting", "Furniture"}, body.Data)
	})

	t.Run("Should serve stats", func(t *testing.T) {
		r, catalogSvc := newTestRouter(t, "")
		catalogSvc.stats = catalog.Stats{TotalProducts: 5}

		resp := doRequest(r, http.MethodGet, "/api/stats", "", "")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"total_products":5`)
	})

	t.Run("Should serve the audit trail", func(t *testing.T) {
		r, catalogSvc := newTestRouter(t, "")
		catalogSvc.auditLogs = []model.AuditLog{
			{ID: 1, Action: model.ActionAdded, ProductName: "Lamp"},
		}

		resp := doRequest(r, http.MethodGet, "/api/logs", "", "")

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Count int              `json:"count"`
			Data  []model.AuditLog `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Count)
		assert.Equal(t, model.ActionAdded, body.Data[0].Action)
	})
}

func TestExportRoute(t *testing.T) {
	t.Run("Should export JSON by default", func(t *testing.T) {
		r, _ := newTestRouter(t, "", testLamp)

		resp := doRequest(r, http.MethodGet, "/api/export/products", "", "")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "application/json")
		assert.Contains(t, resp.Body.String(), `"exported_at"`)
		assert.Contains(t, resp.Body.String(), `"price":29.99`)
	})

	t.Run("Should export CSV with attachment headers", func(t *testing.T) {
		r, _ := newTestRouter(t, "", testLamp)

		resp := doRequest(r, http.MethodGet, "/api/export/products?format=csv", "", "")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, resp.Header().Get("Content-Disposition"), "products_export.csv")

		lines := strings.Split(strings.TrimSpace(resp.Body.String()), "\n")
		require.NotEmpty(t, lines)
		assert.Equal(t, "ID,Name,Price,Category,Created At", lines[0])
		assert.Contains(t, lines[1], "Test Lamp")
	})

	t.Run("Should reject unknown format", func(t *testing.T) {
		r, _ := newTestRouter(t, "")

		resp := doRequest(r, http.MethodGet, "/api/export/products?format=xml", "", "")

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "INVALID_EXPORT_FORMAT")
	})
}

func TestHealthRoute(t *testing.T) {
	t.Run("Should report healthy without a checker", func(t *testing.T) {
		r, _ := newTestRouter(t, "")

		resp := doRequest(r, http.MethodGet, "/healthz", "", "")

		assert.Equal(t, http.StatusOK, resp.Code)
	})
}

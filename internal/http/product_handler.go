package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lny-platform/product-catalog/internal/apperr"
	"github.com/lny-platform/product-catalog/internal/catalog"
	"github.com/lny-platform/product-catalog/internal/repository"
	"github.com/lny-platform/product-catalog/pkg/ptr"
	"github.com/lny-platform/product-catalog/pkg/zerror"
)

type productHandler struct {
	catalogSvc catalog.Service
}

func newProductHandler(catalogSvc catalog.Service) *productHandler {
	return &productHandler{
		catalogSvc: catalogSvc,
	}
}

func (h *productHandler) listProducts(w http.ResponseWriter, r *http.Request) error {
	params := catalog.ListProductsParams{
		Sort: repository.Sort(r.URL.Query().Get("sort")),
	}
	if category := r.URL.Query().Get("category"); category != "" {
		params.Category = ptr.New(category)
	}

	products, err := h.catalogSvc.ListProducts(r.Context(), params)
	if err != nil {
		return fmt.Errorf("catalog service list products: %w", err)
	}

	return writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Count:   len(products),
		Data:    products,
	})
}

func (h *productHandler) getProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	product, err := h.catalogSvc.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("catalog service get product: %w", err)
	}

	return writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: product})
}

func (h *productHandler) createProduct(w http.ResponseWriter, r *http.Request) error {
	params, err := decodeJSON[catalog.CreateProductParams](r)
	if err != nil {
		return err
	}

	product, err := h.catalogSvc.CreateProduct(r.Context(), params)
	if err != nil {
		return fmt.Errorf("catalog service create product: %w", err)
	}

	return writeJSON(w, http.StatusCreated, dataResponse{Success: true, Data: product})
}

func (h *productHandler) updateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	params, err := decodeJSON[catalog.UpdateProductParams](r)
	if err != nil {
		return err
	}

	product, err := h.catalogSvc.UpdateProduct(r.Context(), id, params)
	if err != nil {
		return fmt.Errorf("catalog service update product: %w", err)
	}

	return writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: product})
}

func (h *productHandler) deleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	snapshot, err := h.catalogSvc.DeleteProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("catalog service delete product: %w", err)
	}

	return writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: snapshot})
}

func (h *productHandler) listCategories(w http.ResponseWriter, r *http.Request) error {
	categories, err := h.catalogSvc.Categories(r.Context())
	if err != nil {
		return fmt.Errorf("catalog service categories: %w", err)
	}

	return writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Count:   len(categories),
		Data:    categories,
	})
}

func productID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "productID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, zerror.NewBadRequest("INVALID_PRODUCT_ID", "product id must be an integer").WrapParent(err)
	}
	return id, nil
}

// decodeJSON parses a request body into T, translating type mismatches into
// validation failures the boundary can render per field.
func decodeJSON[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, apperr.ValidationErr.WrapParent(err)
	}
	return v, nil
}

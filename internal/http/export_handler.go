package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/lny-platform/product-catalog/internal/catalog"
	"github.com/lny-platform/product-catalog/internal/export"
	"github.com/lny-platform/product-catalog/internal/repository"
	"github.com/lny-platform/product-catalog/pkg/ptr"
	"github.com/lny-platform/product-catalog/pkg/zerror"
)

type exportHandler struct {
	catalogSvc catalog.Service
}

func newExportHandler(catalogSvc catalog.Service) *exportHandler {
	return &exportHandler{
		catalogSvc: catalogSvc,
	}
}

// exportProducts renders the filtered/sorted product listing as JSON or CSV.
// Both formats carry the same rows in the same order.
func (h *exportHandler) exportProducts(w http.ResponseWriter, r *http.Request) error {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return zerror.NewBadRequest("INVALID_EXPORT_FORMAT", "format must be json or csv")
	}

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

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="products_export.csv"`)
		w.WriteHeader(http.StatusOK)
		if err := export.WriteCSV(w, products); err != nil {
			return fmt.Errorf("write csv export: %w", err)
		}
		return nil
	}

	return writeJSON(w, http.StatusOK, export.NewJSONExport(products, time.Now()))
}

// Package export renders a product result set as CSV or JSON. Both formats
// carry the same rows in the same order with identical price and timestamp
// precision; CSV is the JSON payload's data restructured losslessly.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lny-platform/product-catalog/internal/model"
)

// CSVHeader is the exact header row of a CSV export.
var CSVHeader = []string{"ID", "Name", "Price", "Category", "Created At"}

// Record is a single exported product with price pinned to two fractional
// digits and the creation time in RFC 3339 UTC.
type Record struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Category  string      `json:"category"`
	CreatedAt string      `json:"created_at"`
}

// JSONExport is the envelope of a JSON export.
type JSONExport struct {
	Success    bool     `json:"success"`
	Count      int      `json:"count"`
	ExportedAt string   `json:"exported_at"`
	Data       []Record `json:"data"`
}

// NewJSONExport builds the JSON export envelope for the given products,
// preserving their order.
func NewJSONExport(products []model.Product, exportedAt time.Time) JSONExport {
	records := make([]Record, 0, len(products))
	for _, product := range products {
		records = append(records, newRecord(product))
	}

	return JSONExport{
		Success:    true,
		Count:      len(records),
		ExportedAt: formatTime(exportedAt),
		Data:       records,
	}
}

// WriteCSV writes the header row followed by one row per product, in input
// order.
func WriteCSV(w io.Writer, products []model.Product) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, product := range products {
		record := newRecord(product)
		row := []string{
			strconv.FormatInt(record.ID, 10),
			record.Name,
			record.Price.String(),
			record.Category,
			record.CreatedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

func newRecord(product model.Product) Record {
	return Record{
		ID:        product.ID,
		Name:      product.Name,
		Price:     json.Number(FormatPrice(product.Price)),
		Category:  product.Category,
		CreatedAt: formatTime(product.CreatedAt),
	}
}

// FormatPrice renders a price with exactly two fractional digits, the
// precision the store persists.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

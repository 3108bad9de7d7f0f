package http

import (
	"fmt"
	"net/http"

	"github.com/lny-platform/product-catalog/internal/catalog"
)

type statsHandler struct {
	catalogSvc catalog.Service
}

func newStatsHandler(catalogSvc catalog.Service) *statsHandler {
	return &statsHandler{
		catalogSvc: catalogSvc,
	}
}

func (h *statsHandler) getStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.catalogSvc.Stats(r.Context())
	if err != nil {
		return fmt.Errorf("catalog service stats: %w", err)
	}

	return writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: stats})
}

func (h *statsHandler) listAuditLogs(w http.ResponseWriter, r *http.Request) error {
	entries, err := h.catalogSvc.AuditTrail(r.Context())
	if err != nil {
		return fmt.Errorf("catalog service audit trail: %w", err)
	}

	return writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Count:   len(entries),
		Data:    entries,
	})
}

package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jefree-app/backend/internal/middleware"
	"github.com/jefree-app/backend/internal/quota"
	exportService "github.com/jefree-app/backend/internal/service/export"
	"github.com/jefree-app/backend/pkg/utils"
)

// Handler exposes quota-gated plan downloads.
type Handler struct {
	exportSvc *exportService.Service
}

// New creates the export handler.
func New(exportSvc *exportService.Service) *Handler {
	return &Handler{exportSvc: exportSvc}
}

// RegisterRoutes mounts the export endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/export", h.handleExport)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var payload struct {
		MenuPlan     string `json:"menuPlan"`
		ShoppingList string `json:"shoppingList"`
		CostEstimate string `json:"costEstimate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc := exportService.Document{
		UserName:     identity.Name,
		GeneratedAt:  time.Now().UTC(),
		MenuPlan:     payload.MenuPlan,
		ShoppingList: payload.ShoppingList,
		CostEstimate: payload.CostEstimate,
	}

	content, contentType, err := h.exportSvc.Export(r.Context(), identity.CallerID, identity.Premium, doc)
	if err != nil {
		respondExportError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(doc.GeneratedAt)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		// Headers are already out; nothing more to report to the client.
		return
	}
}

func downloadName(at time.Time) string {
	return "jefree-plan-" + at.Format("2006-01-02") + ".txt"
}

func respondExportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quota.ErrExportQuotaExceeded):
		utils.RespondError(w, http.StatusTooManyRequests, "Free accounts can download 3 documents per day. Upgrade to premium or come back after midnight.")
	case errors.Is(err, exportService.ErrNothingToExport):
		utils.RespondError(w, http.StatusBadRequest, "nothing to export")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "export failed")
	}
}

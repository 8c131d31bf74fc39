package profile

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jefree-app/backend/internal/middleware"
	profileModel "github.com/jefree-app/backend/internal/model/profile"
	"github.com/jefree-app/backend/pkg/utils"
)

// Handler exposes the caller's household preferences.
type Handler struct {
	profiles profileModel.Store
}

// New creates the preferences handler.
func New(profiles profileModel.Store) *Handler {
	return &Handler{profiles: profiles}
}

// RegisterRoutes mounts the preference endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/preferences", h.handleGet)
	r.Put("/preferences", h.handlePut)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	prefs, ok := h.profiles.Get(identity.CallerID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no preferences stored")
		return
	}

	utils.RespondJSON(w, http.StatusOK, prefs)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var prefs profileModel.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if prefs.FamilySize < 0 || prefs.MenuDays < 0 {
		utils.RespondError(w, http.StatusBadRequest, "family size and menu days must not be negative")
		return
	}

	h.profiles.Put(identity.CallerID, prefs)
	utils.RespondJSON(w, http.StatusOK, prefs)
}

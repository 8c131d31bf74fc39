package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jefree-app/backend/internal/middleware"
	"github.com/jefree-app/backend/internal/model/profile"
	"github.com/jefree-app/backend/internal/quota"
	chatService "github.com/jefree-app/backend/internal/service/chat"
	"github.com/jefree-app/backend/pkg/utils"
)

// Handler exposes the planner conversation over HTTP.
type Handler struct {
	chatSvc *chatService.Service
	quotas  quota.Store
}

// New creates the chat handler. A nil service keeps the usage endpoint alive
// while the assistant itself reports unavailable.
func New(chatSvc *chatService.Service, quotas quota.Store) *Handler {
	return &Handler{chatSvc: chatSvc, quotas: quotas}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/menu-plan", h.handleMenuPlan)
	r.Post("/shopping-list", h.handleShoppingList)
	r.Post("/cost-estimate", h.handleCostEstimate)
	r.Get("/usage", h.handleUsage)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	if h.chatSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant unavailable")
		return
	}

	var payload struct {
		Message     string               `json:"message"`
		Preferences *profile.Preferences `json:"preferences,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.Exchange(r.Context(), identity.CallerID, payload.Message, payload.Preferences)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleMenuPlan(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	if h.chatSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant unavailable")
		return
	}

	var payload struct {
		Preferences *profile.Preferences `json:"preferences,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.GenerateMenuPlan(r.Context(), identity.CallerID, identity.Premium, payload.Preferences)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	h.handleDerived(w, r, "menuPlan", h.shoppingList)
}

func (h *Handler) handleCostEstimate(w http.ResponseWriter, r *http.Request) {
	h.handleDerived(w, r, "shoppingList", h.costEstimate)
}

func (h *Handler) shoppingList(r *http.Request, callerID, input string) (chatService.Reply, error) {
	return h.chatSvc.GenerateShoppingList(r.Context(), callerID, input)
}

func (h *Handler) costEstimate(r *http.Request, callerID, input string) (chatService.Reply, error) {
	return h.chatSvc.EstimateShoppingCost(r.Context(), callerID, input)
}

// handleDerived covers the two endpoints that transform a prior reply
// (menu -> list, list -> cost) through the same governed exchange.
func (h *Handler) handleDerived(w http.ResponseWriter, r *http.Request, field string, generate func(r *http.Request, callerID, input string) (chatService.Reply, error)) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	if h.chatSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant unavailable")
		return
	}

	var payload map[string]string
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := payload[field]
	if input == "" {
		utils.RespondError(w, http.StatusBadRequest, field+" is required")
		return
	}

	reply, err := generate(r, identity.CallerID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	usage, err := h.quotas.TokenUsage(r.Context(), identity.CallerID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read usage")
		return
	}

	utils.RespondJSON(w, http.StatusOK, usage)
}

// respondServiceError maps orchestrator errors onto user-facing responses.
// The two quota conditions stay distinguishable and explain the way out.
func respondServiceError(w http.ResponseWriter, err error) {
	var upstream *chatService.UpstreamError
	switch {
	case errors.Is(err, quota.ErrRateLimited):
		utils.RespondError(w, http.StatusTooManyRequests, "You have reached the request limit. Please wait a while before trying again.")
	case errors.Is(err, chatService.ErrPremiumRequired):
		utils.RespondError(w, http.StatusForbidden, "Menus longer than 3 days are a premium feature. Upgrade to unlock them.")
	case errors.Is(err, chatService.ErrMessageRequired), errors.Is(err, chatService.ErrNothingToProcess):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstream):
		utils.RespondError(w, http.StatusBadGateway, "Sorry, I had trouble processing your message. Could you try again?")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}

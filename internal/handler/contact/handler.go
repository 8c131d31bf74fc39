package contact

import (
	"encoding/json"
	"errors"
	"net/http"

	emailService "github.com/jefree-app/backend/internal/service/email"
	"github.com/jefree-app/backend/pkg/utils"
)

// Handler exposes the public contact form. No authentication: visitors write
// in before they have an account.
type Handler struct {
	emails *emailService.Service
}

// New creates the contact handler. A nil service reports the form as
// unavailable.
func New(emails *emailService.Service) *Handler {
	return &Handler{emails: emails}
}

// HandleContact accepts a contact-form submission and mails it to support.
func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	if h.emails == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "contact form unavailable")
		return
	}

	var payload struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.emails.SendContact(r.Context(), payload.Name, payload.Email, payload.Message)
	if err != nil {
		respondContactError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"messageId": id})
}

func respondContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, emailService.ErrFieldsRequired), errors.Is(err, emailService.ErrInvalidAddress):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondError(w, http.StatusBadGateway, "Could not send your message right now. Please try again later.")
	}
}

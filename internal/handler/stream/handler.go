package stream

import (
	"errors"
	"log"
	"net/http"

	"github.com/jefree-app/backend/internal/middleware"
	"github.com/jefree-app/backend/internal/quota"
	chatService "github.com/jefree-app/backend/internal/service/chat"
	"github.com/jefree-app/backend/pkg/utils"
)

// Handler streams planner replies via Server-Sent Events. Governance is the
// same as the non-streaming path: admission up front, accounting only once
// the complete reply arrived.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the stream handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// Frame is one streamed SSE payload.
type Frame struct {
	Event    string `json:"event"`
	Content  string `json:"content,omitempty"`
	Tokens   int64  `json:"tokens,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleStream answers one user message as a chunked SSE stream.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Admission is checked before any SSE output so a rejected caller gets a
	// regular JSON error with the right status code.
	reply, handled := h.run(w, r, flusher, identity.CallerID, message)
	if !handled {
		return
	}

	utils.SendSSEChunk(w, flusher, Frame{
		Event:    "end",
		Tokens:   reply.Tokens,
		Finished: true,
	})
	log.Printf("[stream] completed response for caller=%s, tokens=%d", identity.CallerID, reply.Tokens)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, flusher http.Flusher, callerID, message string) (chatService.Reply, bool) {
	started := false
	emit := func(chunk string) error {
		if !started {
			utils.SetupSSEHeaders(w)
			utils.SendSSEChunk(w, flusher, Frame{Event: "start"})
			started = true
		}
		utils.SendSSEChunk(w, flusher, Frame{Event: "delta", Content: chunk})
		return nil
	}

	reply, err := h.chatSvc.ExchangeStream(r.Context(), callerID, message, nil, emit)
	if err != nil {
		if !started {
			respondStreamError(w, err)
			return chatService.Reply{}, false
		}
		utils.SendSSEChunk(w, flusher, Frame{Event: "error", Error: "generation failed"})
		log.Printf("[stream] caller=%s stream aborted: %v", callerID, err)
		return chatService.Reply{}, false
	}

	if !started {
		// Stream produced content only through concatenation; still open the
		// SSE channel so the client gets a consistent frame sequence.
		utils.SetupSSEHeaders(w)
		utils.SendSSEChunk(w, flusher, Frame{Event: "start"})
		utils.SendSSEChunk(w, flusher, Frame{Event: "delta", Content: reply.Content})
	}

	return reply, true
}

func respondStreamError(w http.ResponseWriter, err error) {
	var upstream *chatService.UpstreamError
	switch {
	case errors.Is(err, quota.ErrRateLimited):
		utils.RespondError(w, http.StatusTooManyRequests, "You have reached the request limit. Please wait a while before trying again.")
	case errors.Is(err, chatService.ErrMessageRequired):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstream):
		utils.RespondError(w, http.StatusBadGateway, "Sorry, I had trouble processing your message. Could you try again?")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
	}
}

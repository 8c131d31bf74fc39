package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/jefree-app/backend/internal/handler/chat"
	contactHandler "github.com/jefree-app/backend/internal/handler/contact"
	exportHandler "github.com/jefree-app/backend/internal/handler/export"
	profileHandler "github.com/jefree-app/backend/internal/handler/profile"
	streamHandler "github.com/jefree-app/backend/internal/handler/stream"
	middlewarePkg "github.com/jefree-app/backend/internal/middleware"
	profileModel "github.com/jefree-app/backend/internal/model/profile"
	"github.com/jefree-app/backend/internal/quota"
	chatService "github.com/jefree-app/backend/internal/service/chat"
	emailService "github.com/jefree-app/backend/internal/service/email"
	exportService "github.com/jefree-app/backend/internal/service/export"
)

// NewRouter wires HTTP routes to core services. A nil chat or email service
// keeps the rest of the API alive while that piece reports unavailable.
func NewRouter(verifier middlewarePkg.Verifier, chatSvc *chatService.Service, exportSvc *exportService.Service, emailSvc *emailService.Service, quotas quota.Store, profiles profileModel.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chat := chatHandler.New(chatSvc, quotas)
	export := exportHandler.New(exportSvc)
	prefs := profileHandler.New(profiles)
	contact := contactHandler.New(emailSvc)

	// The contact form is public; everything else requires a session.
	r.Post("/api/contact", contact.HandleContact)

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.Authenticate(verifier))

		chat.RegisterRoutes(api)
		export.RegisterRoutes(api)
		prefs.RegisterRoutes(api)

		if chatSvc != nil {
			stream := streamHandler.New(chatSvc)
			api.Get("/chat/stream", stream.HandleStream)
		}
	})

	return r
}

package widget

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/widget/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/sign-in", h.SignIn)
			r.Post("/toggle", h.Toggle)
			r.Post("/start", h.StartChat)
			r.Post("/close", h.Close)
			r.Post("/messages", h.SendMessage)
			r.Post("/suggestions/{index}", h.ActivateSuggestion)
			r.Get("/ws", h.Stream)
		})
	})
}

package discovery

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers discovery routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/discovery/{user_id}", func(r chi.Router) {
		r.Post("/start", h.Start)
		r.Post("/answer", h.Answer)
		r.Get("/recommendation", h.Recommendation)
		r.Delete("/", h.Reset)
	})
}

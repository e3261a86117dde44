package project

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers project routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/projects", func(r chi.Router) {
		r.Post("/", h.CreateProject)

		r.Route("/{project_id}", func(r chi.Router) {
			r.Get("/", h.GetProject)
			r.Get("/stage", h.GetCurrentStage)
			r.Post("/advance", h.AdvanceStage)
			r.Post("/jump", h.JumpToStage)
			r.Put("/step", h.UpdateStep)
			r.Post("/outputs", h.RecordOutputs)
			r.Put("/notes/{key}", h.RecordNote)
			r.Post("/chat", h.Chat)
			r.Get("/export", h.ExportPlan)

			r.Post("/tasks", h.GenerateTasks)
			r.Get("/todos", h.ListTodos)
			r.Post("/todos/{todo_id}/complete", h.CompleteTask)
		})
	})
}

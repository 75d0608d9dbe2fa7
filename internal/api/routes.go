package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-tracker/internal/api/middleware"
)

// CanonicalPaths lets /task/create and /TASK/Create reach the same routes
// as /Task/Create.
func CanonicalPaths() func(http.Handler) http.Handler {
	return middleware.CaseInsensitivePaths(2,
		"Task", "Index", "Create", "Details", "Edit", "Delete", "Error")
}

// RegisterRoutes mounts the task pages on r.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, indexPath, http.StatusFound)
	})

	r.Route("/Task", func(r chi.Router) {
		r.Get("/", h.Index)
		r.Get("/Index", h.Index)

		r.Get("/Create", h.CreateForm)
		r.Post("/Create", h.Create)

		r.Get("/Details/{id}", h.Details)

		r.Get("/Edit/{id}", h.EditForm)
		r.Post("/Edit/{id}", h.Edit)

		r.Get("/Delete/{id}", h.DeleteConfirm)
		r.Post("/Delete/{id}", h.Delete)

		r.Get("/Error", h.Error)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/datapath-backend/internal/handlers"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/middleware"
)

// SetupRoutes mounts the API on r. Catalog reads are public; everything
// else resolves the caller through gate and requires a user.
func SetupRoutes(r chi.Router, h *handlers.Handler, gate middleware.CurrentUserResolver, log logging.Logger) {
	r.Get("/health", handlers.Health)

	authenticated := middleware.Authenticate(gate, log)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.Root)

		// Auth routes
		r.Get("/auth/emergent/session", h.Wrap(h.EmergentSession))
		r.Post("/auth/firebase/verify", h.Wrap(h.FirebaseVerify))
		r.Post("/auth/logout", h.Wrap(h.Logout))
		r.With(authenticated).Get("/auth/me", h.Wrap(h.Me))

		// Public catalog routes
		r.Get("/topics", h.Wrap(h.ListTopics))
		r.Get("/topics/{id}", h.Wrap(h.GetTopic))
		r.Get("/projects", h.Wrap(h.ListProjects))
		r.Get("/projects/{id}", h.Wrap(h.GetProject))
		r.Get("/search", h.Wrap(h.Search))

		r.Group(func(r chi.Router) {
			r.Use(authenticated, middleware.RequireUser)

			r.Post("/topics", h.Wrap(h.CreateTopic))
			r.Put("/topics/{id}", h.Wrap(h.UpdateTopic))
			r.Delete("/topics/{id}", h.Wrap(h.DeleteTopic))
			r.Post("/projects", h.Wrap(h.CreateProject))
			r.Put("/projects/{id}", h.Wrap(h.UpdateProject))

			r.Get("/progress", h.Wrap(h.ListProgress))
			r.Post("/progress", h.Wrap(h.UpdateProgress))
			r.Get("/stats", h.Wrap(h.GetStats))
		})
	})
}

// Routes lists the mounted method/pattern pairs, for startup logging.
func Routes(r chi.Routes) []string {
	var out []string
	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	return out
}

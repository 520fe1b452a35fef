package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/itchan-dev/forum/backend/internal/middleware"
	"github.com/itchan-dev/forum/backend/internal/setup"
	mw "github.com/itchan-dev/forum/shared/middleware"
	"github.com/itchan-dev/forum/shared/middleware/metrics"
)

// New creates the chi router with all the routes.
// Every /v1 route resolves the caller to a user with permissions, guests
// included, except routes that need a signed-in user.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestLogger)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", mw.RequestIdHeader},
		ExposedHeaders:   []string{mw.RequestIdHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := deps.Handler
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(deps.Auth.OptionalAuth())

		v1.Group(func(public chi.Router) {
			public.Use(middleware.ResolveUser(deps.Users))
			public.Get("/categories", h.GetCategories)
			public.Get("/threads", h.GetThreads)
			public.Get("/private-threads", h.GetPrivateThreads)
			public.Get("/threads/{thread}", h.GetThread)
			public.Get("/users/active-posters", h.GetActivePosters)

			// one bucket per user shared by both endpoints
			limited := public.With(mw.RateLimit(deps.Limiter))
			limited.Post("/threads/{thread}/posts/split", h.SplitPosts)
			limited.Post("/markup/parse", h.ParseMarkup)
		})

		v1.Group(func(loggedIn chi.Router) {
			loggedIn.Use(deps.Auth.NeedAuth())
			loggedIn.Use(middleware.ResolveUser(deps.Users))
			loggedIn.Post("/threads/{thread}/posts/{post}/read", h.MarkPostRead)
		loggedIn.Delete("/threads/{thread}/posts/{post}/read", h.MarkPostUnread)
		})
	})

	return r
}

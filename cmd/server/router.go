package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/keikaku/internal/api"
	"github.com/phrazzld/keikaku/internal/api/shared"
	apiMiddleware "github.com/phrazzld/keikaku/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	if origins := app.config.Server.AllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", shared.TraceIDHeader},
			ExposedHeaders: []string{"Location", shared.TraceIDHeader},
			MaxAge:         300,
		}))
	}

	userHandler := api.NewUserHandler(app.userService, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, app.cardReviewService, app.logger)
	importHandler := api.NewImportHandler(app.userService, app.importService, app.taskRunner, app.logger)
	referenceHandler := api.NewReferenceHandler(app.logger)

	r.Route("/api", func(r chi.Router) {
		userHandler.RegisterRoutes(r)
		cardHandler.RegisterRoutes(r)
		importHandler.RegisterRoutes(r)
		referenceHandler.RegisterRoutes(r)
	})

	r.Method(http.MethodGet, "/health", api.NewHealthHandler(app.db))

	return r
}

package main

import (
	"net/http"

	"section-hub/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
)

// routes sets up the HTTP router: the JSON API and the CSRF-protected admin pages.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if app.requestTimeout > 0 {
		r.Use(middleware.Timeout(app.requestTimeout))
	}

	r.Get("/healthz", app.api(app.healthHandler))

	r.Route("/api", func(r chi.Router) {
		r.Get("/sections", app.api(app.listSectionsHandler))
		r.Get("/sections/{sectionID}", app.api(app.getSectionHandler))
		r.Get("/sections/{sectionID}/payload", app.api(app.sectionPayloadHandler))
		r.Get("/categories", app.api(app.categoriesHandler))
		r.Get("/installed", app.api(app.installedHandler))
		r.Post("/install-section", app.installSectionHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(app.csrf)
		r.Get("/", app.dashboardHandler)
		r.Get("/explore", app.exploreHandler)
		r.Get("/section/{sectionID}", app.sectionDetailHandler)
		r.Get("/section/{sectionID}/preview", app.sectionPreviewHandler)
		r.Post("/section/{sectionID}/install", app.sectionInstallHandler)
	})

	return r
}

func (app *application) api(h webutil.AppHandler) http.HandlerFunc {
	return webutil.MakeHandler(app.logger, h)
}

// csrf wraps the admin pages with nosurf. Forms carry the token as csrf_token.
func (app *application) csrf(next http.Handler) http.Handler {
	h := nosurf.New(next)
	h.SetBaseCookie(http.Cookie{
		Path:     "/",
		HttpOnly: true,
		Secure:   app.csrfSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Warn("CSRF check failed", "path", r.URL.Path, "reason", nosurf.Reason(r))
		http.Error(w, "Forbidden - CSRF token invalid", http.StatusForbidden)
	}))
	return h
}

package router

import (
	"fmt"
	"net/http"

	"github.com/craprotocol/echo/internal/auth"
	"github.com/craprotocol/echo/internal/transfers"
	"github.com/craprotocol/echo/internal/version"
	"github.com/craprotocol/echo/pkg/cra"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Router struct {
	apiKey  string
	auditor transfers.Pager
	window  cra.Window
	limit   int
}

func NewServer(apiKey string, auditor transfers.Pager, window cra.Window, limit int) *Router {
	return &Router{
		apiKey,
		auditor,
		window,
		limit,
	}
}

// Handler builds the routes of the audit API
func (r *Router) Handler() http.Handler {
	cr := chi.NewRouter()

	a := auth.New(r.apiKey)

	// configure middleware
	cr.Use(middleware.RequestID)
	cr.Use(middleware.Logger)
	cr.Use(middleware.Recoverer)

	// configure custom middleware
	cr.Use(OptionsMiddleware)
	cr.Use(HealthMiddleware)
	cr.Use(a.AuthMiddleware)
	cr.Use(middleware.Compress(9))

	// instantiate handlers
	t := transfers.NewService(r.auditor, r.window, r.limit)
	v := version.NewService()

	// configure routes
	cr.Get("/version", v.Current)

	cr.Route("/v1/transfers", func(cr chi.Router) {
		cr.Get("/", t.GetAll)
	})

	return cr
}

func (r *Router) Start(port int) error {
	// start the server
	return http.ListenAndServe(fmt.Sprintf(":%v", port), r.Handler())
}

package api

import (
	"context"
	"net/http"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/auth"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/content"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RateLimiter decides whether a client may post a form now
type RateLimiter interface {
	Allow(ctx context.Context, scope, client string) (bool, error)
}

type Dependencies struct {
	Forms          *service.FormService
	Content        *content.Catalog
	Auth           *auth.JWTConfig
	Limiter        RateLimiter // nil disables rate limiting
	AllowedOrigins []string
	Log            *zap.Logger
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	// Add request logging middleware
	r.Use(RequestLogger(d.Log))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{SubmissionIDHeader},
		MaxAge:         300,
	}))

	// Form endpoints
	r.With(RateLimit("cita", d.Limiter, d.Log)).Post("/citas", d.submitAppointment)
	r.With(RateLimit("pqrs", d.Limiter, d.Log)).Post("/pqrs", d.submitPQRS)

	// Content endpoints
	r.Route("/contenido", func(r chi.Router) {
		r.Get("/clinica", d.getClinic)
		r.Get("/servicios", d.listServices)
		r.Get("/especialidades", d.listSpecialties)
		r.Get("/noticias", d.listNews)
		r.Get("/noticias/{slug}", d.getArticle)
		r.Get("/legal/{page}", d.getLegalPage)
	})

	// Operator endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Use(d.Auth.RequireRole(auth.RoleAdmin))
		r.Get("/gateway/status", d.gatewayStatus)
		r.Post("/gateway/test", d.gatewayTest)
	})

	return r
}

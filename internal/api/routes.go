package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(s.Metrics.Middleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/learners/{learnerID}", func(r chi.Router) {
		r.Use(learnerMiddleware)
		if s.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(s.RequestTimeout))
		}

		r.Route("/lessons/{lessonID}", func(r chi.Router) {
			r.Post("/open", s.handleOpenLesson)
			r.Post("/advance", s.handleAdvance)
			r.Post("/retreat", s.handleRetreat)
			r.Post("/jump", s.handleJump)
			r.Post("/complete", s.handleComplete)
			r.Post("/interact", s.handleInteract)
			r.Post("/tick", s.handleTick)
			r.Post("/close", s.handleCloseLesson)
		})

		r.Get("/rollup", s.handleRollup)
		r.Get("/courses/{courseID}/progress", s.handleCourseProgress)
		r.Post("/activities/{activityID}/reset", s.handleResetActivity)
	})

	if len(s.AllowedOrigins) == 0 {
		return r
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return c.Handler(r)
}

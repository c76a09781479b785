package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/models"
)

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) handleRollup(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	learnerID := chi.URLParam(r, "learnerID")

	today := s.now()
	if v := r.URL.Query().Get("today"); v != "" {
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			log.Warn("invalid today parameter: %s", v)
			handleError(w, r, apperrors.NewBadRequestError("today must be YYYY-MM-DD"))
			return
		}
		today = t
	}

	rollup, err := s.ProgressService.Rollup(r.Context(), learnerID, today)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rollup)
}

func (s *Server) handleCourseProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")
	courseID := chi.URLParam(r, "courseID")

	p, err := s.ProgressService.CourseProgress(r.Context(), learnerID, courseID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleResetActivity(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")
	activityID := chi.URLParam(r, "activityID")

	p, err := s.ProgressService.ResetActivity(r.Context(), learnerID, activityID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

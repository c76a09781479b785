package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lessonflow/internal/activity"
	"github.com/vytor/lessonflow/internal/db"
	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/metrics"
	"github.com/vytor/lessonflow/internal/services"
)

type Server struct {
	DB              *db.DB
	LessonService   services.LessonService
	ProgressService services.ProgressService
	Metrics         *metrics.Metrics
	RequestTimeout  time.Duration
	AllowedOrigins  []string
	Now             func() time.Time
}

type jumpRequest struct {
	Index *int `json:"index"`
}

type tickRequest struct {
	ElapsedSeconds *float64 `json:"elapsed_seconds"`
}

func lessonParams(r *http.Request) (learnerID, lessonID string) {
	return chi.URLParam(r, "learnerID"), chi.URLParam(r, "lessonID")
}

func (s *Server) handleOpenLesson(w http.ResponseWriter, r *http.Request) {
	learnerID, lessonID := lessonParams(r)
	logger.FromContext(r.Context()).Debug("opening lesson %s", lessonID)

	st, err := s.LessonService.Open(r.Context(), learnerID, lessonID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	learnerID, lessonID := lessonParams(r)
	st, err := s.LessonService.Advance(r.Context(), learnerID, lessonID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	learnerID, lessonID := lessonParams(r)
	st, err := s.LessonService.Retreat(r.Context(), learnerID, lessonID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	learnerID, lessonID := lessonParams(r)

	var req jumpRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Index == nil {
		handleError(w, r, apperrors.NewBadRequestError("index required"))
		return
	}

	st, err := s.LessonService.JumpTo(r.Context(), learnerID, lessonID, *req.Index)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	learnerID, lessonID := lessonParams(r)
	st, err := s.LessonService.MarkComplete(r.Context(), learnerID, lessonID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	learnerID, lessonID := lessonParams(r)

	var in activity.Interaction
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	if in.Kind == "" {
		handleError(w, r, apperrors.NewBadRequestError("kind required"))
		return
	}

	st, err := s.LessonService.Interact(r.Context(), learnerID, lessonID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	learnerID, lessonID := lessonParams(r)

	var req tickRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.ElapsedSeconds == nil {
		handleError(w, r, apperrors.NewBadRequestError("elapsed_seconds required"))
		return
	}

	st, err := s.LessonService.Tick(r.Context(), learnerID, lessonID, *req.ElapsedSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleCloseLesson(w http.ResponseWriter, r *http.Request) {
	learnerID, lessonID := lessonParams(r)
	if err := s.LessonService.Close(r.Context(), learnerID, lessonID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

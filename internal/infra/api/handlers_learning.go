package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"edu-subscription-platform/internal/domain/model"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.CourseFilter{
		LearningLevel: model.LearningLevel(q.Get("learning_level")),
		AgeGroup:      model.AgeTier(q.Get("age_group")),
		SkillArea:     model.SkillArea(q.Get("skill_area")),
		PublishedOnly: true,
	}
	if v := q.Get("published_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "published_only must be a boolean")
			return
		}
		f.PublishedOnly = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeDetail(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}

	courses, err := s.courses.List(r.Context(), userFrom(r.Context()), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if courses == nil {
		courses = []*model.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := s.courses.Get(r.Context(), userFrom(r.Context()), chi.URLParam(r, "courseId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleStreamVideo(w http.ResponseWriter, r *http.Request) {
	link, err := s.courses.StreamVideo(r.Context(), userFrom(r.Context()),
		chi.URLParam(r, "courseId"), chi.URLParam(r, "videoId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	e, err := s.enrollments.Enroll(r.Context(), userFrom(r.Context()), chi.URLParam(r, "courseId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleGetEnrollment(w http.ResponseWriter, r *http.Request) {
	e, err := s.enrollments.Get(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "courseId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleMyEnrollments(w http.ResponseWriter, r *http.Request) {
	list, err := s.enrollments.ListMine(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*model.Enrollment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleLearningPath(w http.ResponseWriter, r *http.Request) {
	lp, err := s.enrollments.LearningPath(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lp)
}

type progressBody struct {
	VideoID        string `json:"video_id" validate:"required"`
	WatchedSeconds int64  `json:"watched_seconds" validate:"gte=0"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	var body progressBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.enrollments.RecordCompletion(r.Context(), userFrom(r.Context()).ID,
		chi.URLParam(r, "courseId"), body.VideoID, body.WatchedSeconds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

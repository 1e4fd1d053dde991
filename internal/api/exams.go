package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/store"
)

type subjectView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.authoring.Subjects(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]subjectView, len(subjects))
	for i, sub := range subjects {
		out[i] = subjectView{ID: sub.ID, Name: sub.Name, Description: sub.Description}
	}
	writeJSON(w, http.StatusOK, out)
}

type createExamRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Subject         string `json:"subject"`
	Topic           string `json:"topic"`
	Difficulty      string `json:"difficulty"`
	DurationMinutes int    `json:"duration_minutes"`
	TotalQuestions  int    `json:"total_questions"`
	QuestionType    string `json:"question_type"`
}

type createExamResponse struct {
	Exam    examView `json:"exam"`
	Warning string   `json:"warning,omitempty"`
}

func (s *Server) createExam(w http.ResponseWriter, r *http.Request) {
	var req createExamRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	qtype, err := parseType(req.QuestionType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.authoring.CreateExam(r.Context(), authoring.CreateExamInput{
		Title:           req.Title,
		Description:     req.Description,
		Subject:         req.Subject,
		Topic:           req.Topic,
		CreatorID:       userID(r),
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
		TotalQuestions:  req.TotalQuestions,
		QuestionType:    qtype,
	})
	if e == nil {
		s.writeError(w, r, err)
		return
	}

	// The exam exists even when generation failed; report it with a
	// warning so the author can regenerate.
	resp := createExamResponse{Exam: newExamView(e)}
	if err != nil {
		resp.Warning = err.Error()
	}
	if qs, qerr := s.authoring.Questions(r.Context(), e.ID); qerr == nil {
		resp.Exam.Questions = questionViews(qs, true)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listExams(w http.ResponseWriter, r *http.Request) {
	f := store.ExamFilter{AvailableOnly: true}
	if mine, _ := strconv.ParseBool(r.URL.Query().Get("mine")); mine {
		f = store.ExamFilter{CreatorID: userID(r)}
	}
	exams, err := s.authoring.ListExams(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]examView, len(exams))
	for i, e := range exams {
		out[i] = newExamView(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// getExam shows the question bank with its answer key to the creator.
// Other callers only see available exams, without questions.
func (s *Server) getExam(w http.ResponseWriter, r *http.Request) {
	e, err := s.authoring.Exam(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	v := newExamView(e)
	switch {
	case e.CreatorID == userID(r):
		qs, err := s.authoring.Questions(r.Context(), e.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		v.Questions = questionViews(qs, true)
	case !e.Available():
		s.writeError(w, r, exam.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) publishExam(w http.ResponseWriter, r *http.Request) {
	if err := s.authoring.Publish(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unpublishExam(w http.ResponseWriter, r *http.Request) {
	if err := s.authoring.Unpublish(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) regenerateExam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionType string `json:"question_type"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	qtype, err := parseType(req.QuestionType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	qs, err := s.authoring.Regenerate(r.Context(), chi.URLParam(r, "id"), userID(r), qtype)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questionViews(qs, true))
}

type examResultsResponse struct {
	Sessions   []sessionView   `json:"sessions"`
	Statistics exam.Statistics `json:"statistics"`
}

func (s *Server) examResults(w http.ResponseWriter, r *http.Request) {
	sessions, stats, err := s.sessions.ExamResults(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, examResultsResponse{Sessions: sessionViews(sessions), Statistics: stats})
}

func (s *Server) examStats(w http.ResponseWriter, r *http.Request) {
	e, err := s.authoring.Exam(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if e.CreatorID != userID(r) {
		s.writeError(w, r, exam.ErrUnauthorized)
		return
	}
	stats, err := s.sessions.Statistics(r.Context(), e.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) questionVariations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	drafts, err := s.authoring.Variations(r.Context(), chi.URLParam(r, "id"), userID(r), req.Count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftViews(drafts))
}

func parseType(s string) (exam.QuestionType, error) {
	if s == "" {
		return "", nil
	}
	t, ok := exam.ParseQuestionType(s)
	if !ok {
		return "", fmt.Errorf("%w: unknown question type %q", exam.ErrInvalidInput, s)
	}
	return t, nil
}

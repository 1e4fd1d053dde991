package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/examiz/internal/exam"
)

var errNoEvaluator = errors.New("no answer evaluator configured")

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.StartSession(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(sess))
}

type sessionResponse struct {
	Session          sessionView    `json:"session"`
	Exam             examView       `json:"exam"`
	Questions        []questionView `json:"questions"`
	Answers          []*answerView  `json:"answers"`
	RemainingSeconds int            `json:"remaining_seconds"`
}

// getSession returns the student's questions in their personal order,
// the answers saved so far and the time left. Reading the time may
// auto-submit an overdue session; the returned session reflects that.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := s.ownSession(w, r)
	if !ok {
		return
	}

	remaining := 0
	if !sess.Submitted {
		var err error
		if remaining, err = s.sessions.TimeRemainingSeconds(ctx, sess); err != nil {
			s.writeError(w, r, err)
			return
		}
		if remaining == 0 {
			if sess, ok = s.ownSession(w, r); !ok {
				return
			}
		}
	}

	e, err := s.authoring.Exam(ctx, sess.ExamID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	qs, err := s.sessions.OrderedQuestions(ctx, sess.ExamID, sess.StudentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	answers, err := s.sessions.Answers(ctx, sess.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := sessionResponse{
		Session:          newSessionView(sess),
		Exam:             newExamView(e),
		Questions:        questionViews(qs, false),
		Answers:          make([]*answerView, len(answers)),
		RemainingSeconds: remaining,
	}
	for i, a := range answers {
		resp.Answers[i] = newAnswerView(a)
		if !sess.Submitted {
			// Grades are not revealed before submission.
			resp.Answers[i].IsCorrect = nil
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recordAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, ok := s.ownSession(w, r)
	if !ok {
		return
	}
	if err := s.sessions.RecordAnswer(r.Context(), sess.ID, chi.URLParam(r, "questionID"), req.Answer); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) timeRemaining(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownSession(w, r)
	if !ok {
		return
	}
	remaining, err := s.sessions.TimeRemainingSeconds(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"remaining_seconds": remaining})
}

func (s *Server) submitSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers map[string]string `json:"answers"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, ok := s.ownSession(w, r)
	if !ok {
		return
	}
	done, err := s.sessions.SubmitWithAnswers(r.Context(), sess.ID, req.Answers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(done))
}

// sessionResults is visible to the student who took the session and to
// the exam's creator.
func (s *Server) sessionResults(w http.ResponseWriter, r *http.Request) {
	res, err := s.sessions.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if actor := userID(r); res.Session.StudentID != actor && res.Exam.CreatorID != actor {
		s.writeError(w, r, exam.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, newResultView(res))
}

func (s *Server) sessionReview(w http.ResponseWriter, r *http.Request) {
	if s.reviewer == nil {
		s.writeError(w, r, &exam.ExternalServiceError{Op: "review answers", Err: errNoEvaluator})
		return
	}
	res, err := s.sessions.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if actor := userID(r); res.Session.StudentID != actor && res.Exam.CreatorID != actor {
		s.writeError(w, r, exam.ErrUnauthorized)
		return
	}

	reviews, err := s.reviewer.ReviewSession(r.Context(), res.Session.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewViews(reviews))
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.History(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionViews(sessions))
}

// ownSession loads the {id} session and checks the caller owns it. On
// failure it writes the error response and returns false.
func (s *Server) ownSession(w http.ResponseWriter, r *http.Request) (*exam.Session, bool) {
	sess, err := s.sessions.SessionFor(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

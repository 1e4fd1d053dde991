// Package take is the exam-taking screen: one question at a time, a live
// countdown, answers saved as they are given.
package take

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	"github.com/abhisek/examiz/internal/screens/results"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/ui/components"
	"github.com/abhisek/examiz/internal/ui/layout"
)

const answerCharLimit = 2000

// TakeScreen implements screen.Screen for a running exam session.
type TakeScreen struct {
	sessions  *session.Service
	exams     *authoring.Service
	examID    string
	studentID string

	sess      *exam.Session
	exam      *exam.Exam
	questions []*exam.Question
	saved     map[string]string
	current   int
	remaining int

	choice components.MultiChoice
	input  components.TextInput

	confirming bool
	submitting bool
	notice     string
	errMsg     string
}

var (
	_ screen.Screen          = (*TakeScreen)(nil)
	_ screen.KeyHintProvider = (*TakeScreen)(nil)
	_ screen.StatusProvider  = (*TakeScreen)(nil)
	_ screen.BackHandler     = (*TakeScreen)(nil)
)

// New creates a TakeScreen that starts, or resumes, studentID's attempt
// at examID.
func New(sessions *session.Service, exams *authoring.Service, examID, studentID string) *TakeScreen {
	return &TakeScreen{
		sessions:  sessions,
		exams:     exams,
		examID:    examID,
		studentID: studentID,
		saved:     make(map[string]string),
	}
}

func (s *TakeScreen) Init() tea.Cmd {
	return s.load()
}

func (s *TakeScreen) Title() string {
	if s.exam == nil {
		return "Exam"
	}
	return s.exam.Title
}

// Status shows the countdown in the header.
func (s *TakeScreen) Status() string {
	if s.sess == nil {
		return ""
	}
	return "⏱ " + layout.FormatClock(s.remaining)
}

func (s *TakeScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirming:
		return []layout.KeyHint{
			{Key: "Y", Description: "Submit now"},
			{Key: "N", Description: "Keep working"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Tab/Shift+Tab", Description: "Next/Prev"},
	}
	if q := s.question(); q != nil && q.Type.Objective() {
		hints = append(hints, layout.KeyHint{Key: "A-D", Description: "Choose"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Save"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+S", Description: "Submit"},
		layout.KeyHint{Key: "Esc", Description: "Leave"},
	)
}

func (s *TakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)

	case tickMsg:
		if s.sess == nil || s.submitting {
			return s, nil
		}
		return s, s.checkRemaining()

	case remainingMsg:
		if msg.Err != nil {
			s.notice = msg.Err.Error()
			return s, tickCmd()
		}
		s.remaining = msg.Remaining
		if msg.Remaining == 0 {
			// The expiry check has already finalized the session.
			return s, s.showResults()
		}
		return s, tickCmd()

	case savedMsg:
		return s.handleSaved(msg)

	case submittedMsg:
		if msg.Err != nil {
			s.submitting = false
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, s.showResults()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.editingText() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// Back saves a pending free-form answer before leaving. The session keeps
// running and can be resumed until time runs out.
func (s *TakeScreen) Back() tea.Cmd {
	pop := func() tea.Msg { return router.PopScreenMsg{} }
	if save := s.savePending(); save != nil {
		return tea.Sequence(save, pop)
	}
	return pop
}

func (s *TakeScreen) load() tea.Cmd {
	sessions, exams := s.sessions, s.exams
	examID, studentID := s.examID, s.studentID
	return func() tea.Msg {
		ctx := context.Background()

		sess, err := sessions.StartSession(ctx, examID, studentID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		e, err := exams.Exam(ctx, examID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		qs, err := sessions.OrderedQuestions(ctx, examID, studentID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		answers, err := sessions.Answers(ctx, sess.ID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		remaining, err := sessions.TimeRemainingSeconds(ctx, sess)
		if err != nil {
			return loadedMsg{Err: err}
		}

		saved := make(map[string]string, len(answers))
		for _, a := range answers {
			saved[a.QuestionID] = a.Text
		}
		return loadedMsg{Session: sess, Exam: e, Questions: qs, Answers: saved, Remaining: remaining}
	}
}

func (s *TakeScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		return s, nil
	}
	s.sess = msg.Session
	s.exam = msg.Exam
	s.questions = msg.Questions
	s.saved = msg.Answers
	s.remaining = msg.Remaining

	if s.remaining == 0 {
		return s, s.showResults()
	}
	if len(s.questions) == 0 {
		s.errMsg = "This exam has no questions yet."
		return s, nil
	}
	return s, tea.Batch(s.focus(0), tickCmd())
}

func (s *TakeScreen) handleSaved(msg savedMsg) (screen.Screen, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, exam.ErrSessionClosed):
		// Time ran out between the last tick and the save.
		return s, s.showResults()
	case msg.Err != nil:
		s.notice = "Not saved: " + msg.Err.Error()
	default:
		s.saved[msg.QuestionID] = msg.Answer
		s.notice = "Saved"
	}
	return s, nil
}

func (s *TakeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.sess == nil || s.submitting {
		return s, nil
	}

	if s.confirming {
		switch key {
		case "y", "Y":
			s.confirming = false
			return s, s.submit()
		case "n", "N", "esc":
			s.confirming = false
		}
		return s, nil
	}

	switch key {
	case "ctrl+s":
		s.confirming = true
		return s, nil
	case "tab":
		return s, s.move(1)
	case "shift+tab":
		return s, s.move(-1)
	}

	q := s.question()
	if q == nil {
		return s, nil
	}

	if q.Type.Objective() {
		switch key {
		case "right", "l":
			return s, s.move(1)
		case "left", "h":
			return s, s.move(-1)
		}
		before := s.choice.Chosen
		s.choice, _ = s.choice.Update(msg)
		if s.choice.Chosen != before {
			return s, s.save(q.ID, s.choice.Chosen)
		}
		return s, nil
	}

	if key == "enter" {
		return s, s.savePending()
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.notice = ""
	return s, cmd
}

// move saves any pending text and shows the question delta steps away.
func (s *TakeScreen) move(delta int) tea.Cmd {
	next := s.current + delta
	if next < 0 || next >= len(s.questions) {
		return nil
	}
	save := s.savePending()
	return tea.Batch(save, s.focus(next))
}

// focus makes question i current and prepares its input widget.
func (s *TakeScreen) focus(i int) tea.Cmd {
	s.current = i
	s.notice = ""
	q := s.questions[i]
	if q.Type.Objective() {
		s.choice = components.NewMultiChoice(options(q), s.saved[q.ID])
		return nil
	}
	s.input = components.NewTextInput("Type your answer...", s.saved[q.ID], answerCharLimit)
	return s.input.Init()
}

func (s *TakeScreen) question() *exam.Question {
	if s.current < 0 || s.current >= len(s.questions) {
		return nil
	}
	return s.questions[s.current]
}

func (s *TakeScreen) editingText() bool {
	q := s.question()
	return s.sess != nil && !s.confirming && !s.submitting && q != nil && !q.Type.Objective()
}

// pending returns the typed answer of the current question if it differs
// from what is stored.
func (s *TakeScreen) pending() (questionID, text string, ok bool) {
	q := s.question()
	if q == nil || q.Type.Objective() {
		return "", "", false
	}
	text = s.input.Value()
	if text == s.saved[q.ID] {
		return "", "", false
	}
	return q.ID, text, true
}

func (s *TakeScreen) savePending() tea.Cmd {
	id, text, ok := s.pending()
	if !ok {
		return nil
	}
	return s.save(id, text)
}

func (s *TakeScreen) save(questionID, text string) tea.Cmd {
	sessions, sessionID := s.sessions, s.sess.ID
	return func() tea.Msg {
		err := sessions.RecordAnswer(context.Background(), sessionID, questionID, text)
		return savedMsg{QuestionID: questionID, Answer: text, Err: err}
	}
}

func (s *TakeScreen) submit() tea.Cmd {
	s.submitting = true
	pending := map[string]string{}
	if id, text, ok := s.pending(); ok {
		pending[id] = text
	}
	sessions, sessionID := s.sessions, s.sess.ID
	return func() tea.Msg {
		sess, err := sessions.SubmitWithAnswers(context.Background(), sessionID, pending)
		if errors.Is(err, exam.ErrAlreadySubmitted) || errors.Is(err, exam.ErrSessionClosed) {
			err = nil
		}
		return submittedMsg{Session: sess, Err: err}
	}
}

func (s *TakeScreen) checkRemaining() tea.Cmd {
	sessions, sess := s.sessions, s.sess
	return func() tea.Msg {
		remaining, err := sessions.TimeRemainingSeconds(context.Background(), sess)
		return remainingMsg{Remaining: remaining, Err: err}
	}
}

func (s *TakeScreen) showResults() tea.Cmd {
	s.submitting = true
	next := results.New(s.sessions, s.sess.ID)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

// options returns the non-empty options of a choice question.
func options(q *exam.Question) []string {
	var out []string
	for _, o := range q.Options {
		if o == "" {
			break
		}
		out = append(out, o)
	}
	return out
}

func describe(err error) string {
	switch {
	case errors.Is(err, exam.ErrAlreadyCompleted):
		return "You have already completed this exam."
	case errors.Is(err, exam.ErrExamUnavailable):
		return "This exam is not open right now."
	case errors.Is(err, exam.ErrNotFound):
		return "Exam not found."
	}
	return err.Error()
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

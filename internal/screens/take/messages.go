package take

import (
	"time"

	"github.com/abhisek/examiz/internal/exam"
)

// loadedMsg carries everything the screen needs once the session has
// been started or resumed.
type loadedMsg struct {
	Session   *exam.Session
	Exam      *exam.Exam
	Questions []*exam.Question
	Answers   map[string]string
	Remaining int
	Err       error
}

// tickMsg is sent every second to refresh the countdown.
type tickMsg time.Time

// remainingMsg reports the authoritative time left. Zero means the
// session has been submitted, possibly by the expiry check itself.
type remainingMsg struct {
	Remaining int
	Err       error
}

// savedMsg confirms an answer was written to the ledger.
type savedMsg struct {
	QuestionID string
	Answer     string
	Err        error
}

// submittedMsg is sent once the session is closed, by the student or by
// the clock.
type submittedMsg struct {
	Session *exam.Session
	Err     error
}

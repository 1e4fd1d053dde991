package scoring

import "github.com/abhisek/examiz/internal/exam"

// Statistics aggregates the scores of submitted and evaluated sessions.
// Other sessions are ignored. With no qualifying sessions every field is 0.
func Statistics(sessions []*exam.Session) exam.Statistics {
	var (
		st     exam.Statistics
		sum    float64
		passed int
	)
	for _, s := range sessions {
		if s.State() != exam.StateEvaluated {
			continue
		}
		if st.Attempts == 0 || s.Score > st.Max {
			st.Max = s.Score
		}
		if st.Attempts == 0 || s.Score < st.Min {
			st.Min = s.Score
		}
		st.Attempts++
		sum += s.Score
		if s.Score >= exam.PassThreshold {
			passed++
		}
	}
	if st.Attempts == 0 {
		return exam.Statistics{}
	}
	st.Average = sum / float64(st.Attempts)
	st.PassRate = float64(passed) / float64(st.Attempts) * 100
	return st
}

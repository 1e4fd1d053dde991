package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/examiz/internal/exam"
)

const systemPrompt = `You are an expert exam question generator. Create high-quality, educational questions that test student understanding effectively.

Rules:
- Every question must be clear, well-formed and self-contained.
- Questions test understanding, not just memorization.
- Match the requested difficulty level.
- All questions in a batch must be unique and cover different aspects of the topic.
- For single_choice questions give exactly four options (A, B, C, D) with exactly one correct. Distractors should reflect common misconceptions. correct_answer is the marker letter.
- For short_answer and essay questions leave all options empty and put a concise model answer in correct_answer.
- Do not repeat any question from the "already in the exam" list.`

const variationsPrompt = `You are an expert at creating question variations while maintaining educational value and difficulty.

Rules:
- Each variation tests the same concept as the original with different wording, numbers or examples.
- Keep the same difficulty level and learning objective.
- Give exactly four options (A, B, C, D) with exactly one correct. correct_answer is the marker letter.`

// buildUserMessage constructs the user message for a batch request.
func buildUserMessage(input Input, count int, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", input.Subject)
	fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	fmt.Fprintf(&b, "Question type: %s\n", input.Type)
	fmt.Fprintf(&b, "Number of questions: %d\n", count)

	b.WriteString("\nAlready in the exam:\n")
	b.WriteString(buildDedup(input.Existing, cfg.MaxExisting))

	return b.String()
}

// buildVariationsMessage describes the original question for rewording.
func buildVariationsMessage(q *exam.Question, n int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create %d variations of this question.\n\n", n)
	fmt.Fprintf(&b, "Original question: %s\n", q.Text)
	b.WriteString("Original options:\n")
	for i, m := range exam.OptionMarkers {
		fmt.Fprintf(&b, "%s) %s\n", m, q.Options[i])
	}
	fmt.Fprintf(&b, "Correct answer: %s\n", q.CorrectAnswer)
	fmt.Fprintf(&b, "Points: %d", q.Points)

	return b.String()
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/questiongen"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview LLM-generated questions for a topic (no database)",
	Long: `Generate a batch of questions and print them with their answers.

This is a stateless developer tool: nothing is stored and no LLM events are
recorded. Useful for judging question quality before creating an exam.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("subject", "", "Subject name (required)")
	previewCmd.Flags().String("topic", "", "Topic within the subject")
	previewCmd.Flags().String("difficulty", exam.DifficultyMedium, "Difficulty: easy, medium or hard")
	previewCmd.Flags().String("type", string(exam.TypeSingleChoice), "Question type: single_choice, short_answer or essay")
	previewCmd.Flags().Int("count", 5, "Number of questions to generate")
	_ = previewCmd.MarkFlagRequired("subject")
}

func runPreview(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	topic, _ := cmd.Flags().GetString("topic")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	typeVal, _ := cmd.Flags().GetString("type")
	count, _ := cmd.Flags().GetInt("count")

	qtype, ok := exam.ParseQuestionType(typeVal)
	if !ok {
		return fmt.Errorf("invalid type %q: must be single_choice, short_answer or essay", typeVal)
	}
	if !exam.ValidDifficulty(difficulty) {
		return fmt.Errorf("invalid difficulty %q: must be easy, medium or hard", difficulty)
	}
	if topic == "" {
		topic = subject
	}

	// No EventRepo: logging skipped.
	ctx := context.Background()
	provider, err := llm.NewProviderFromEnv(ctx, nil)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	gen := questiongen.New(provider, questiongen.DefaultConfig()).WithLogger(logger)

	fmt.Printf("Subject: %s, topic: %s (%s, %s)\n", subject, topic, difficulty, qtype)
	fmt.Printf("Generating %d questions...\n\n", count)

	drafts, err := gen.Generate(ctx, questiongen.Input{
		Subject:    subject,
		Topic:      topic,
		Difficulty: difficulty,
		Count:      count,
		Type:       qtype,
	})
	if err != nil {
		return err
	}

	for i, d := range drafts {
		fmt.Printf("── Question %d/%d (%d pt) ──\n", i+1, len(drafts), d.Points)
		fmt.Println(d.Text)
		if d.Type.Objective() {
			for j, m := range exam.OptionMarkers {
				fmt.Printf("  %s) %s\n", m, d.Options[j])
			}
		}
		fmt.Printf("Answer: %s\n\n", d.CorrectAnswer)
	}

	if len(drafts) < count {
		fmt.Printf("Only %d of %d questions passed validation.\n", len(drafts), count)
	}
	return nil
}

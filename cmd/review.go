package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/exam"
)

var reviewCmd = &cobra.Command{
	Use:   "review <session-id>",
	Short: "Ask the LLM to judge the free-text answers of a session",
	Long: "Review runs the AI evaluator over the short-answer and essay responses of a\n" +
		"submitted session. The verdicts are advisory and do not change the score.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := actingUser(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd, true, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		if svc.reviewer == nil {
			return &exam.ExternalServiceError{Op: "review answers", Err: fmt.Errorf("no LLM provider configured")}
		}

		ctx := contextOf(cmd)
		res, err := svc.sessions.Results(ctx, args[0])
		if err != nil {
			return err
		}
		if res.Session.StudentID != actor && res.Exam.CreatorID != actor {
			return exam.ErrUnauthorized
		}

		reviews, err := svc.reviewer.ReviewSession(ctx, res.Session.ID)
		if err != nil {
			return err
		}
		if len(reviews) == 0 {
			fmt.Println("No free-text answers to review.")
			return nil
		}

		sep := strings.Repeat("─", 60)
		for i, r := range reviews {
			fmt.Println(sep)
			fmt.Printf("%d. %s\n", i+1, r.Question.Text)
			answer := "(no answer)"
			if r.Answer != nil {
				answer = r.Answer.Text
			}
			fmt.Printf("Answer:   %s\n", answer)
			if r.Err != nil {
				fmt.Printf("Review failed: %v\n", r.Err)
				continue
			}
			fmt.Printf("Score:    %d/100\n", r.Evaluation.Score)
			fmt.Printf("Feedback: %s\n", r.Evaluation.Feedback)
			if len(r.Evaluation.PointsCovered) > 0 {
				fmt.Printf("Covered:  %s\n", strings.Join(r.Evaluation.PointsCovered, "; "))
			}
			if len(r.Evaluation.PointsMissed) > 0 {
				fmt.Printf("Missed:   %s\n", strings.Join(r.Evaluation.PointsMissed, "; "))
			}
		}
		fmt.Println(sep)
		return nil
	},
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/ui/layout"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Take an exam from the command line",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <exam-id>",
	Short: "Start or resume an exam and print its questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		student, err := actingUser(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd, false, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := contextOf(cmd)
		sess, err := svc.sessions.StartSession(ctx, args[0], student)
		if err != nil {
			return err
		}
		qs, err := svc.sessions.OrderedQuestions(ctx, sess.ExamID, student)
		if err != nil {
			return err
		}
		remaining, err := svc.sessions.TimeRemainingSeconds(ctx, sess)
		if err != nil {
			return err
		}

		fmt.Printf("Session %s, %s left.\n", sess.ID, layout.FormatClock(remaining))
		for i, q := range qs {
			fmt.Printf("\n%d. %s\n   id: %s\n", i+1, q.Text, q.ID)
			if q.Type.Objective() {
				for j, m := range exam.OptionMarkers {
					fmt.Printf("   %s) %s\n", m, q.Options[j])
				}
			}
		}
		return nil
	},
}

var sessionAnswerCmd = &cobra.Command{
	Use:   "answer <session-id> <question-id> <answer>",
	Short: "Save or replace an answer",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		student, err := actingUser(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd, false, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := contextOf(cmd)
		sess, err := svc.sessions.SessionFor(ctx, args[0], student)
		if err != nil {
			return err
		}
		if err := svc.sessions.RecordAnswer(ctx, sess.ID, args[1], strings.Join(args[2:], " ")); err != nil {
			return err
		}
		fmt.Println("Saved.")
		return nil
	},
}

var sessionRemainingCmd = &cobra.Command{
	Use:   "remaining <session-id>",
	Short: "Show the time left; an overdue session is submitted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		student, err := actingUser(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd, false, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := contextOf(cmd)
		sess, err := svc.sessions.SessionFor(ctx, args[0], student)
		if err != nil {
			return err
		}
		if sess.Submitted {
			fmt.Println("Submitted.")
			return nil
		}
		remaining, err := svc.sessions.TimeRemainingSeconds(ctx, sess)
		if err != nil {
			return err
		}
		if remaining == 0 {
			fmt.Println("Time is up. The session was submitted.")
			return nil
		}
		fmt.Printf("%s left.\n", layout.FormatClock(remaining))
		return nil
	},
}

var sessionSubmitCmd = &cobra.Command{
	Use:   "submit <session-id>",
	Short: "Submit a session for scoring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		student, err := actingUser(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd, false, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := contextOf(cmd)
		sess, err := svc.sessions.SessionFor(ctx, args[0], student)
		if err != nil {
			return err
		}
		done, err := svc.sessions.SubmitSession(ctx, sess.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Submitted. Score %.1f%% of %d points.\n", done.Score, done.TotalPoints)
		return nil
	},
}

var sessionResultsCmd = &cobra.Command{
	Use:   "results <session-id>",
	Short: "Show the graded answers of a submitted session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := actingUser(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd, false, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		res, err := svc.sessions.Results(contextOf(cmd), args[0])
		if err != nil {
			return err
		}
		if res.Session.StudentID != actor && res.Exam.CreatorID != actor {
			return exam.ErrUnauthorized
		}

		fmt.Printf("%s: %.1f%% (%d points)\n", res.Exam.Title, res.Session.Score, res.Session.TotalPoints)
		for i, it := range res.Items {
			mark, answer := "-", "(no answer)"
			if it.Answer != nil {
				answer = it.Answer.Text
				switch {
				case it.Answer.PendingReview():
					mark = "?"
				case *it.Answer.IsCorrect:
					mark = "✓"
				default:
					mark = "✗"
				}
			}
			fmt.Printf("\n%s %d. %s\n", mark, i+1, it.Question.Text)
			fmt.Printf("    Your answer: %s\n", answer)
			if it.Question.Type.Objective() {
				fmt.Printf("    Correct:     %s\n", it.Question.CorrectAnswer)
			}
		}
		return nil
	},
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List your submitted sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, err := actingUser(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd, false, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		sessions, err := svc.sessions.History(contextOf(cmd), student)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No submitted sessions yet.")
			return nil
		}

		fmt.Printf("%-36s  %-36s  %8s  %s\n", "Session", "Exam", "Score", "Submitted")
		fmt.Println(strings.Repeat("─", 100))
		for _, s := range sessions {
			score := "pending"
			if s.Evaluated {
				score = fmt.Sprintf("%.1f%%", s.Score)
			}
			when := humanize.Time(s.StartTime)
			if s.EndTime != nil {
				when = humanize.Time(*s.EndTime)
			}
			fmt.Printf("%-36s  %-36s  %8s  %s\n", s.ID, s.ExamID, score, when)
		}
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionAnswerCmd)
	sessionCmd.AddCommand(sessionRemainingCmd)
	sessionCmd.AddCommand(sessionSubmitCmd)
	sessionCmd.AddCommand(sessionResultsCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
}

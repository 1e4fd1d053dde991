package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/app"
	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/evaluator"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/logging"
	"github.com/abhisek/examiz/internal/questiongen"
	"github.com/abhisek/examiz/internal/selfupdate"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/store"
)

// services bundles the store and everything built on it.
type services struct {
	store     *store.Store
	authoring *authoring.Service
	sessions  *session.Service
	reviewer  *evaluator.Reviewer // nil without an LLM provider
}

func (s *services) Close() error {
	return s.store.Close()
}

// openServices opens the store and wires the exam services. When withLLM
// is set an LLM provider is configured from the environment; a missing
// provider only disables the AI features.
func openServices(cmd *cobra.Command, withLLM bool, log *slog.Logger) (*services, error) {
	driver, dsn, err := resolveDB(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.OpenDriver(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var gen questiongen.Generator
	var reviewer *evaluator.Reviewer
	if withLLM {
		provider, err := llm.NewProviderFromEnv(contextOf(cmd), st.EventRepo())
		if err != nil {
			log.Warn("LLM provider not configured, AI features are unavailable", "error", err)
		} else {
			gen = questiongen.New(provider, questiongen.DefaultConfig()).WithLogger(log)
			reviewer = evaluator.NewReviewer(st, evaluator.New(provider, evaluator.DefaultConfig()))
		}
	}

	return &services{
		store:     st,
		authoring: authoring.NewService(st, gen, log),
		sessions:  session.NewService(st, session.WithLogger(log)),
		reviewer:  reviewer,
	}, nil
}

// runApp launches the terminal client, optionally straight into an exam.
// Logs go to a file next to the database so they do not tear the screen.
func runApp(cmd *cobra.Command, examID string) error {
	student, err := actingUser(cmd)
	if err != nil {
		return err
	}

	log := logging.Discard()
	if driver, dsn, err := resolveDB(cmd); err == nil && (driver == store.DriverSQLite || driver == "") {
		f, err := os.OpenFile(filepath.Join(filepath.Dir(dsn), "examiz.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			defer f.Close()
			log = logging.New(f, logLevel)
		}
	}

	svc, err := openServices(cmd, false, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	skipWelcome, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(app.Options{
		Sessions:    svc.sessions,
		Exams:       svc.authoring,
		StudentID:   student,
		ExamID:      examID,
		Version:     version,
		Updates:     selfupdate.NewChecker(),
		SkipWelcome: skipWelcome,
		Logger:      log,
	})
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

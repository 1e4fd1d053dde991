package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/examiz/internal/store"
)

// Purpose labels recorded with every call.
const (
	PurposeQuestionGen        = "question-gen"
	PurposeQuestionVariations = "question-variations"
	PurposeAnswerEval         = "answer-eval"
)

type purposeKey struct{}

// WithPurpose tags ctx so the call it carries is recorded under purpose.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unknown"
}

// LoggingProvider stores one llm_request_events row per call, successful
// or not. A failed write is logged and never fails the call.
type LoggingProvider struct {
	inner  Provider
	name   string
	events store.EventRepo
	logger *slog.Logger
}

// WithLogging records calls made through p. name is the provider label
// stored with each event.
func WithLogging(p Provider, name string, events store.EventRepo) *LoggingProvider {
	return &LoggingProvider{inner: p, name: name, events: events, logger: slog.Default()}
}

// SetLogger replaces the logger used for write failures.
func (l *LoggingProvider) SetLogger(logger *slog.Logger) { l.logger = logger }

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(started).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	if werr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); werr != nil {
		l.logger.WarnContext(ctx, "llm event not recorded", "purpose", ev.Purpose, "error", werr)
	}
	return resp, err
}

// transcript renders req as plain text for the event log.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "--- system\n%s\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "--- %s\n%s\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "--- schema %s\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}

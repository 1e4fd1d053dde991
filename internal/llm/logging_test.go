package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/examiz/internal/logging"
	"github.com/abhisek/examiz/internal/store"
)

// memEvents is an in-memory store.EventRepo.
type memEvents struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	fail   error
}

func (m *memEvents) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.events = append(m.events, d)
	return nil
}

func (m *memEvents) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMRequestEventRecord, error) {
	return nil, nil
}

func (m *memEvents) GetLLMEvent(context.Context, int) (*store.LLMRequestEventRecord, error) {
	return nil, nil
}

func (m *memEvents) LLMUsageByPurpose(context.Context) ([]store.LLMUsageStats, error) {
	return nil, nil
}

func (m *memEvents) LLMUsageByModel(context.Context) ([]store.LLMModelUsage, error) {
	return nil, nil
}

func TestLoggingRecordsSuccess(t *testing.T) {
	events := &memEvents{}
	m := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: newUsage(12, 7)})
	p := WithLogging(m, ProviderMock, events)

	ctx := WithPurpose(context.Background(), PurposeQuestionGen)
	_, err := p.Generate(ctx, Request{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
		Schema:   testSchema,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(events.events) != 1 {
		t.Fatalf("events = %d, want 1", len(events.events))
	}
	ev := events.events[0]
	if ev.Purpose != PurposeQuestionGen || ev.Provider != ProviderMock || !ev.Success {
		t.Errorf("event = %+v", ev)
	}
	if ev.InputTokens != 12 || ev.OutputTokens != 7 || ev.ResponseBody != `{"ok":true}` {
		t.Errorf("usage/body = %d %d %q", ev.InputTokens, ev.OutputTokens, ev.ResponseBody)
	}
	for _, want := range []string{"--- system\nbe brief", "--- user\nhello", "--- schema test-questions"} {
		if !strings.Contains(ev.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, ev.RequestBody)
		}
	}
}

func TestLoggingRecordsFailure(t *testing.T) {
	events := &memEvents{}
	p := WithLogging(NewMockProvider(), ProviderMock, events)

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error from empty mock")
	}
	ev := events.events[0]
	if ev.Success || ev.ErrorMessage == "" || ev.Purpose != "unknown" {
		t.Errorf("event = %+v", ev)
	}
}

func TestLoggingWriteFailureIsSwallowed(t *testing.T) {
	events := &memEvents{fail: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), ProviderMock, events)
	p.SetLogger(logging.Discard())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

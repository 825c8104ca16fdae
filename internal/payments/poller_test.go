package payments

import (
	"context"
	"testing"
	"time"
)

type scriptedFetcher struct {
	statuses []string
	calls    int
}

func (s *scriptedFetcher) Status(_ context.Context, intentID string) (*IntentDTO, error) {
	idx := s.calls
	if idx >= len(s.statuses) {
		idx = len(s.statuses) - 1
	}
	s.calls++
	return &IntentDTO{ID: intentID, Status: s.statuses[idx]}, nil
}

func TestWaitForTerminalStopsOnSuccess(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []string{"processing", "processing", "succeeded"}}
	poller, err := NewPoller(fetcher, time.Millisecond, testLogger())
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}

	dto, err := poller.WaitForTerminal(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("WaitForTerminal: %v", err)
	}
	if dto.Status != "succeeded" {
		t.Errorf("status = %q, want succeeded", dto.Status)
	}
	if fetcher.calls != 3 {
		t.Errorf("expected 3 polls, got %d", fetcher.calls)
	}
}

func TestWaitForTerminalStopsOnCancel(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []string{"processing", "canceled"}}
	poller, err := NewPoller(fetcher, time.Millisecond, testLogger())
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}

	dto, err := poller.WaitForTerminal(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("WaitForTerminal: %v", err)
	}
	if dto.Status != "canceled" {
		t.Errorf("status = %q, want canceled", dto.Status)
	}
}

func TestWaitForTerminalAbortsOnContextDone(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []string{"processing"}}
	poller, err := NewPoller(fetcher, 50*time.Millisecond, testLogger())
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := poller.WaitForTerminal(ctx, "pi_123"); err == nil {
		t.Fatal("expected error when context expires mid-poll")
	}
}

func TestNewPollerRejectsBadInterval(t *testing.T) {
	if _, err := NewPoller(&scriptedFetcher{statuses: []string{"processing"}}, 0, testLogger()); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

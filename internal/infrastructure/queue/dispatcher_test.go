package queue

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	done   chan struct{}
	want   int
}

func (s *recordingService) Process(_ context.Context, e domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	if len(s.events) == s.want {
		close(s.done)
	}
	return nil
}

func (s *recordingService) List(context.Context, ports.AuditFilter) ([]*domain.AuditEvent, error) {
	return nil, nil
}

func TestDispatcher_PreservesPerSubjectOrder(t *testing.T) {
	const perSubject = 50
	subjects := []string{"1", "2", "3", "4", "5"}
	svc := &recordingService{done: make(chan struct{}), want: perSubject * len(subjects)}

	d := NewDispatcher(3, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < perSubject; i++ {
		for _, s := range subjects {
			d.Record(domain.AuditEvent{Type: domain.AuditLoginSucceeded, Subject: s, Detail: strconv.Itoa(i)})
		}
	}

	select {
	case <-svc.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for events")
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	next := make(map[string]int)
	for _, e := range svc.events {
		if e.Detail != strconv.Itoa(next[e.Subject]) {
			t.Fatalf("subject %s: expected seq %d, got %s", e.Subject, next[e.Subject], e.Detail)
		}
		next[e.Subject]++
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingService{}, zerolog.Nop())
	for _, s := range []string{"alice", "42", ""} {
		first := d.shardIndex(s)
		if first < 0 || first >= 8 {
			t.Fatalf("index out of range: %d", first)
		}
		if d.shardIndex(s) != first {
			t.Fatalf("unstable shard for %q", s)
		}
	}
}

func TestDispatcher_RecordDoesNotBlockWhenFull(t *testing.T) {
	d := NewDispatcher(1, &recordingService{}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.AuditEvent{Type: domain.AuditAccessDenied, Subject: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a full queue")
	}
	if len(d.workers[0]) != channelBuffer {
		t.Fatalf("expected full buffer, got %d", len(d.workers[0]))
	}
}

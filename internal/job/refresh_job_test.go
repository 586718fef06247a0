package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/service"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubRefresher struct {
	mu    sync.Mutex
	calls int
	creds []string
	err   error
}

func (s *stubRefresher) Refresh(ctx context.Context, credential string) (*service.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.creds = append(s.creds, credential)
	if s.err != nil {
		return nil, s.err
	}
	return &service.Dashboard{FetchResult: domain.FetchResult{
		MacroProvenance:   domain.ProvenanceMock,
		CompanyProvenance: domain.ProvenanceMock,
		ErrorType:         domain.ErrorQuotaExceeded,
		ErrorMessage:      "quota",
	}}, nil
}

func (s *stubRefresher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestNewRefreshJobDefaultsInterval(t *testing.T) {
	j := NewRefreshJob(testTracer, &stubRefresher{}, "", 0)
	if j.interval != service.DefaultStalenessWindow {
		t.Fatalf("expected default interval, got %v", j.interval)
	}
}

func TestRefreshJobRunsImmediatelyAndOnTicker(t *testing.T) {
	t.Parallel()

	stub := &stubRefresher{}
	j := NewRefreshJob(testTracer, stub, "sk-server", 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	eventually(t, func() bool { return stub.count() >= 2 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after cancel")
	}
	if stub.creds[0] != "sk-server" {
		t.Fatalf("expected server credential, got %q", stub.creds[0])
	}
}

func TestRefreshJobSurvivesErrors(t *testing.T) {
	t.Parallel()

	stub := &stubRefresher{err: errors.New("all data sources exhausted")}
	j := NewRefreshJob(testTracer, stub, "", 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Start(ctx)

	eventually(t, func() bool { return stub.count() >= 2 })
}

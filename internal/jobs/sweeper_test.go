package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

type fakeMaintenance struct {
	mu          sync.Mutex
	downgrades  int
	purges      int
	downErr     error
	lastNow     time.Time
	downgraded  int
	purgedCount int64
}

func (f *fakeMaintenance) DowngradeExpired(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downgrades++
	f.lastNow = now
	return f.downgraded, f.downErr
}

func (f *fakeMaintenance) PurgeExpiredSessions(context.Context, time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purges++
	return f.purgedCount, nil
}

func (f *fakeMaintenance) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downgrades, f.purges
}

func TestSweepRunsBothTasks(t *testing.T) {
	fm := &fakeMaintenance{downgraded: 2, purgedCount: 5}
	s := NewSweeper(logger.Nop(), fm, time.Minute)
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	res, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Downgraded != 2 || res.PurgedSessions != 5 {
		t.Fatalf("result = %+v", res)
	}
	if !fm.lastNow.Equal(fixed) {
		t.Fatalf("now not passed through: %v", fm.lastNow)
	}
}

func TestSweepPurgesEvenWhenDowngradeFails(t *testing.T) {
	fm := &fakeMaintenance{downErr: errors.New("db down")}
	s := NewSweeper(logger.Nop(), fm, time.Minute)

	if _, err := s.Sweep(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if d, p := fm.calls(); d != 1 || p != 1 {
		t.Fatalf("calls = %d/%d", d, p)
	}
}

func TestStartSweepsImmediatelyAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	fm := &fakeMaintenance{}
	s := NewSweeper(logger.Nop(), fm, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := s.Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		if d, _ := fm.calls(); d >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper did not tick")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

package errlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakePurger) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return 3, f.err
}

func (f *fakePurger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestJanitorPurgesImmediately(t *testing.T) {
	purger := &fakePurger{}
	j := NewJanitor(purger, 30*24*time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for purger.calls() == 0 {
		select {
		case <-deadline:
			t.Fatal("janitor never purged")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop on cancel")
	}

	purger.mu.Lock()
	cutoff := purger.cutoffs[0]
	purger.mu.Unlock()

	want := time.Now().UTC().Add(-30 * 24 * time.Hour)
	if diff := want.Sub(cutoff); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff = %v, want about %v", cutoff, want)
	}
}

func TestJanitorSurvivesPurgeError(t *testing.T) {
	purger := &fakePurger{err: errors.New("table missing")}
	j := NewJanitor(purger, time.Hour, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	j.Run(ctx)

	if purger.calls() < 2 {
		t.Errorf("janitor stopped ticking after an error: %d calls", purger.calls())
	}
}

package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// mockMaterializer counts triggers and can remove the path after a
// configured number of calls, simulating the platform materializing the
// placeholder.
type mockMaterializer struct {
	mu           sync.Mutex
	calls        int
	removeAfter  int // remove the path on the Nth trigger; 0 = never
	pathAtCall   []bool
	returnVanish bool // return fs.ErrNotExist after removing
}

func (m *mockMaterializer) Trigger(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	_, statErr := os.Lstat(path)
	m.pathAtCall = append(m.pathAtCall, statErr == nil)

	if m.removeAfter > 0 && m.calls >= m.removeAfter {
		os.Remove(path)
		if m.returnVanish {
			return fs.ErrNotExist
		}
	}
	return nil
}

func (m *mockMaterializer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testWaiterConfig() WaiterConfig {
	return WaiterConfig{
		PollInterval:  5 * time.Millisecond,
		RetryInterval: 15 * time.Millisecond,
		Timeout:       250 * time.Millisecond,
	}
}

func placeholder(t *testing.T) Entry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Folder.cloudf")
	writeFile(t, path)
	return Entry{Path: path, Cycle: 1}
}

func TestWaitSucceedsWhenPathVanishes(t *testing.T) {
	entry := placeholder(t)
	mat := &mockMaterializer{removeAfter: 1}
	waiter := NewWaiter(testWaiterConfig(), mat)

	res := waiter.Wait(context.Background(), entry)

	if res.Status != StatusSucceeded {
		t.Fatalf("expected %s, got %s", StatusSucceeded, res.Status)
	}
	if res.Attempts != 1 {
		t.Errorf("expected 1 trigger, got %d", res.Attempts)
	}
	if res.Duration >= testWaiterConfig().Timeout {
		t.Errorf("success took %s, expected well under the %s budget", res.Duration, testWaiterConfig().Timeout)
	}
}

func TestWaitSucceedsImmediatelyWithoutTriggerWhenAlreadyGone(t *testing.T) {
	entry := Entry{Path: filepath.Join(t.TempDir(), "AlreadyGone.cloudf"), Cycle: 1}
	mat := &mockMaterializer{}
	waiter := NewWaiter(testWaiterConfig(), mat)

	res := waiter.Wait(context.Background(), entry)

	if res.Status != StatusSucceeded {
		t.Fatalf("expected %s, got %s", StatusSucceeded, res.Status)
	}
	if mat.callCount() != 0 {
		t.Errorf("materializer must not be invoked for a path that no longer exists, got %d calls", mat.callCount())
	}
}

func TestWaitTimesOutWithinOnePollOfBudget(t *testing.T) {
	entry := placeholder(t)
	cfg := testWaiterConfig()
	cfg.Timeout = 60 * time.Millisecond
	mat := &mockMaterializer{} // never removes
	waiter := NewWaiter(cfg, mat)

	start := time.Now()
	res := waiter.Wait(context.Background(), entry)
	elapsed := time.Since(start)

	if res.Status != StatusTimedOut {
		t.Fatalf("expected %s, got %s", StatusTimedOut, res.Status)
	}
	// The deadline check happens on poll ticks, so the overshoot is bounded
	// by one poll interval plus scheduling slop.
	if elapsed < cfg.Timeout {
		t.Errorf("timed out after %s, before the %s budget", elapsed, cfg.Timeout)
	}
	if elapsed > cfg.Timeout+10*cfg.PollInterval {
		t.Errorf("timed out after %s, far beyond the %s budget", elapsed, cfg.Timeout)
	}

	if _, err := os.Lstat(entry.Path); err != nil {
		t.Errorf("timed-out entry should still be on disk: %v", err)
	}
}

func TestWaitRetriggersOnRetryInterval(t *testing.T) {
	entry := placeholder(t)
	cfg := WaiterConfig{
		PollInterval:  5 * time.Millisecond,
		RetryInterval: 20 * time.Millisecond,
		Timeout:       110 * time.Millisecond,
	}
	mat := &mockMaterializer{}
	waiter := NewWaiter(cfg, mat)

	res := waiter.Wait(context.Background(), entry)

	if res.Status != StatusTimedOut {
		t.Fatalf("expected %s, got %s", StatusTimedOut, res.Status)
	}
	// One initial trigger plus roughly timeout/retryInterval re-triggers.
	if res.Attempts < 3 {
		t.Errorf("expected at least 3 triggers over %s, got %d", cfg.Timeout, res.Attempts)
	}
	if res.Attempts > 8 {
		t.Errorf("expected at most 8 triggers over %s, got %d", cfg.Timeout, res.Attempts)
	}
}

func TestWaitTreatsTriggerVanishAsSuccess(t *testing.T) {
	entry := placeholder(t)
	mat := &mockMaterializer{removeAfter: 1, returnVanish: true}
	waiter := NewWaiter(testWaiterConfig(), mat)

	res := waiter.Wait(context.Background(), entry)

	if res.Status != StatusSucceeded {
		t.Fatalf("transient vanish must resolve as %s, got %s", StatusSucceeded, res.Status)
	}
}

func TestWaitNeverTriggersAfterPathGone(t *testing.T) {
	entry := placeholder(t)
	cfg := WaiterConfig{
		PollInterval:  5 * time.Millisecond,
		RetryInterval: 5 * time.Millisecond,
		Timeout:       200 * time.Millisecond,
	}
	mat := &mockMaterializer{removeAfter: 2}
	waiter := NewWaiter(cfg, mat)

	waiter.Wait(context.Background(), entry)

	mat.mu.Lock()
	defer mat.mu.Unlock()
	for i, existed := range mat.pathAtCall {
		if !existed {
			t.Errorf("trigger %d was invoked for a path that had already stopped existing", i+1)
		}
	}
}

func TestWaitEndsEarlyOnCancel(t *testing.T) {
	entry := placeholder(t)
	cfg := testWaiterConfig()
	cfg.Timeout = 10 * time.Second
	waiter := NewWaiter(cfg, &mockMaterializer{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := waiter.Wait(ctx, entry)

	if res.Status != StatusTimedOut {
		t.Fatalf("cancelled wait should report %s, got %s", StatusTimedOut, res.Status)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled wait took %s, expected prompt return", elapsed)
	}
}

func TestWaiterConfigClampsRetryToPoll(t *testing.T) {
	cfg := WaiterConfig{
		PollInterval:  50 * time.Millisecond,
		RetryInterval: 10 * time.Millisecond,
	}.withDefaults()
	if cfg.RetryInterval != cfg.PollInterval {
		t.Errorf("retry interval %s should be clamped to poll interval %s", cfg.RetryInterval, cfg.PollInterval)
	}
}

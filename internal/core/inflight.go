package core

// inflight.go tracks outbound report sends.
//
// Reports are never queued or limited, but a send that is running when the
// server stops should be allowed to finish. Inflight counts running sends so
// shutdown can wait for them with WaitForDrain.

import (
	"context"
	"sync"
	"time"
)

// drainPollInterval is how often WaitForDrain checks for completion.
const drainPollInterval = 100 * time.Millisecond

// Inflight counts operations that are currently running.
// The zero value is ready to use.
type Inflight struct {
	mu     sync.RWMutex
	active int
	total  int64
}

// NewInflight returns an empty tracker.
func NewInflight() *Inflight {
	return &Inflight{}
}

// Begin records the start of an operation. The caller MUST call End when it
// completes (use defer).
func (f *Inflight) Begin() {
	f.mu.Lock()
	f.active++
	f.total++
	f.mu.Unlock()
}

// End records the completion of an operation started with Begin.
func (f *Inflight) End() {
	f.mu.Lock()
	if f.active > 0 {
		f.active--
	}
	f.mu.Unlock()
}

// ActiveCount returns the number of running operations.
func (f *Inflight) ActiveCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.active
}

// WaitForDrain blocks until no operations are running or ctx is done.
func (f *Inflight) WaitForDrain(ctx context.Context) error {
	if f.ActiveCount() == 0 {
		return nil
	}

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if f.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// InflightStatus is a snapshot of the tracker.
type InflightStatus struct {
	Active int   `json:"active"`
	Total  int64 `json:"total"`
}

// Status returns the current state for health checks.
func (f *Inflight) Status() InflightStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return InflightStatus{Active: f.active, Total: f.total}
}

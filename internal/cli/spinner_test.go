package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStopIsNotCancellation(t *testing.T) {
	s := newSpinner("Composing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("Stop() should not mark the spinner as cancelled")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Analyzing tone...")
	s.Start()

	cancel()

	// Give the goroutine time to notice cancellation.
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Generating background...")
	s.Start()

	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Composing...")
	s.Start()

	// Stopping repeatedly must not panic or deadlock.
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinner("Rewriting caption...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	s.SetMessage("Composing...")

	s.mu.Lock()
	got := s.message
	widest := s.widest
	s.mu.Unlock()

	if got != "Composing..." {
		t.Errorf("message = %q, want %q", got, "Composing...")
	}
	// The previous, longer message must still drive line clearing so the
	// trailing characters of "Rewriting caption..." are erased.
	if want := len("Rewriting caption..."); widest < want {
		t.Errorf("widest = %d, want at least %d", widest, want)
	}

	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Composing...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Saved sunset-960x1200.png")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Composing...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Compose failed: no surface")
}

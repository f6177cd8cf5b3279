package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	var slept []time.Duration
	original := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = original })

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("zero wait: %v", err)
	}
	if err := WaitFor(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(slept) != 1 || slept[0] != 3*time.Second {
		t.Fatalf("unexpected sleeps: %v", slept)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(slept) != 1 {
		t.Fatalf("expected no sleep after cancellation, got %v", slept)
	}
}

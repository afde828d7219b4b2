package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUntil_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := Until(context.Background(), time.Millisecond, time.Second, func() (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("Until: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestUntil_EventualSuccess(t *testing.T) {
	calls := 0
	err := Until(context.Background(), time.Millisecond, time.Second, func() (bool, error) {
		calls++
		return calls >= 3, nil
	})
	if err != nil {
		t.Fatalf("Until: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestUntil_Timeout(t *testing.T) {
	err := Until(context.Background(), time.Millisecond, 20*time.Millisecond, func() (bool, error) {
		return false, nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Until: got %v, want ErrTimeout", err)
	}
}

func TestUntil_PredicateError(t *testing.T) {
	boom := errors.New("boom")
	err := Until(context.Background(), time.Millisecond, time.Second, func() (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Until: got %v, want predicate error", err)
	}
}

func TestUntil_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Until(ctx, time.Millisecond, time.Second, func() (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Until: got %v, want context.Canceled", err)
	}
}

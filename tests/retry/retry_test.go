package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dhg-platform/taxon/pkg/retry"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2,
	}
}

func always(error) bool { return false }

func transientOnly(err error) bool { return errors.Is(err, errTransient) }

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("success on first attempt", func(t *testing.T) {
		calls := 0
		err := retry.Do(ctx, fastPolicy(3), transientOnly, func(context.Context) error {
			calls++
			return nil
		})

		if err != nil {
			t.Fatalf("Do error: %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("retries transient failures until success", func(t *testing.T) {
		calls := 0
		err := retry.Do(ctx, fastPolicy(3), transientOnly, func(context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})

		if err != nil {
			t.Fatalf("Do error: %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("exhaustion wraps the last error", func(t *testing.T) {
		calls := 0
		err := retry.Do(ctx, fastPolicy(3), transientOnly, func(context.Context) error {
			calls++
			return errTransient
		})

		if !errors.Is(err, errTransient) {
			t.Errorf("err = %v, want wrapped errTransient", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("non-retryable error short-circuits", func(t *testing.T) {
		calls := 0
		err := retry.Do(ctx, fastPolicy(3), transientOnly, func(context.Context) error {
			calls++
			return errPermanent
		})

		if !errors.Is(err, errPermanent) {
			t.Errorf("err = %v, want errPermanent", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("zero max attempts still runs once", func(t *testing.T) {
		calls := 0
		err := retry.Do(ctx, retry.Policy{}, always, func(context.Context) error {
			calls++
			return errPermanent
		})

		if err == nil {
			t.Error("expected error")
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("cancellation during backoff surfaces both errors", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)

		policy := retry.Policy{
			MaxAttempts:    3,
			InitialBackoff: time.Minute,
			MaxBackoff:     time.Minute,
			Multiplier:     2,
		}

		calls := 0
		done := make(chan error, 1)
		go func() {
			done <- retry.Do(cctx, policy, transientOnly, func(context.Context) error {
				calls++
				return errTransient
			})
		}()

		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("err = %v, want context.Canceled", err)
			}
			if !errors.Is(err, errTransient) {
				t.Errorf("err = %v, want joined errTransient", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Do did not return after cancellation")
		}

		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})
}

func TestDefaultPolicy(t *testing.T) {
	p := retry.DefaultPolicy()

	if p.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", p.MaxAttempts)
	}
	if p.InitialBackoff != 500*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 500ms", p.InitialBackoff)
	}
	if p.MaxBackoff != 8*time.Second {
		t.Errorf("MaxBackoff = %v, want 8s", p.MaxBackoff)
	}
}

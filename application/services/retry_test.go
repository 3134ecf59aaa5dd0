package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Shogun05/VoiceFrame/domain"
)

func TestWithRetry(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, Backoff: time.Millisecond, Timeout: 50 * time.Millisecond}
	flaky := errors.New("upstream unavailable")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{name: "first attempt succeeds", failures: 0, err: flaky, wantCalls: 1},
		{name: "recovers after transient failures", failures: 2, err: flaky, wantCalls: 3},
		{name: "gives up after all attempts", failures: 5, err: flaky, wantCalls: 3, wantErr: flaky},
		{name: "invalid scene is not retried", failures: 5, err: fmt.Errorf("%w: bad json", domain.ErrInvalidScene),
			wantCalls: 1, wantErr: domain.ErrInvalidScene},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			value, err := withRetry(context.Background(), policy, nopLogger{}, "test", func(ctx context.Context) (int, error) {
				calls++
				if calls <= tt.failures {
					return 0, tt.err
				}
				return 7, nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || value != 7 {
				t.Errorf("withRetry() = %d, %v", value, err)
			}
		})
	}
}

func TestWithRetry_AttemptTimeout(t *testing.T) {
	policy := RetryPolicy{Attempts: 2, Backoff: time.Millisecond, Timeout: 10 * time.Millisecond}

	_, err := withRetry(context.Background(), policy, nopLogger{}, "slow call", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

package retrylimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string   { return http.StatusText(int(s)) }
func (s statusErr) StatusCode() int { return int(s) }

func fastConfig(attempts int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialDelay = time.Millisecond
	cfg.RateLimitDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestWithRetry_RetriesServerErrors(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return statusErr(http.StatusServiceUnavailable)
		}
		return nil
	}, nil, fastConfig(3))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_StopsOnClientError(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return statusErr(http.StatusNotFound)
	}, nil, fastConfig(5))
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
	var se statusErr
	if !errors.As(err, &se) || int(se) != http.StatusNotFound {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestWithRetry_StopsOnFatal(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return Fatal(boom)
	}, nil, fastConfig(5))
	if calls != 1 || !errors.Is(err, boom) {
		t.Errorf("expected one call and boom, got calls=%d err=%v", calls, err)
	}
}

func TestWithRetry_MaxAttemptsWrapsLastError(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return statusErr(http.StatusTooManyRequests)
	}, NewAdaptiveLimiter(100, 1, 100, 1, 0.5), fastConfig(2))
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	var se statusErr
	if !errors.As(err, &se) || int(se) != http.StatusTooManyRequests {
		t.Errorf("expected wrapped 429, got %v", err)
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetryConfig(ctx, func() error { return nil }, nil, fastConfig(3))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAdaptiveLimiter_Bounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)

	lim.RateLimited()
	if got := lim.CurrentLimit(); got != 2 {
		t.Errorf("expected 2 after one overload, got %v", got)
	}
	lim.RateLimited()
	lim.RateLimited()
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("expected floor of 1, got %v", got)
	}

	// recent overload suppresses growth
	lim.Success()
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("expected no growth right after overload, got %v", got)
	}

	fresh := NewAdaptiveLimiter(8, 1, 8, 1, 0.5)
	fresh.Success()
	if got := fresh.CurrentLimit(); got != 8 {
		t.Errorf("expected ceiling of 8, got %v", got)
	}
}

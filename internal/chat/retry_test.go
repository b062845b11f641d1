package chat

import (
	"errors"
	"testing"
)

func TestRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", errors.New("429: Rate Limit exceeded"), true},
		{"quota", errors.New("quota exceeded for project"), true},
		{"server error", errors.New("upstream returned 503"), true},
		{"unavailable", errors.New("service UNAVAILABLE"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"temporary", errors.New("temporary DNS failure"), true},
		{"auth failure", errors.New("401 invalid api key"), false},
		{"bad request", errors.New("400 malformed prompt"), false},
		{"context canceled", errors.New("context canceled"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultRetryConfig()
	if cfg.MaxRetries <= 0 {
		t.Error("MaxRetries must be positive")
	}
	if cfg.InitialInterval <= 0 || cfg.MaxInterval < cfg.InitialInterval {
		t.Errorf("bad intervals: initial %v, max %v", cfg.InitialInterval, cfg.MaxInterval)
	}
}

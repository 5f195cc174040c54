package redis

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/versefinder/internal/logger"
)

func TestBackoff(t *testing.T) {
	b := &backoff{wait: time.Second, max: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}

	for i, w := range want {
		if got := b.next(); got != w {
			t.Errorf("next() #%d = %v, want %v", i, got, w)
		}
	}
}

func TestConnectRejectsInvalidOptions(t *testing.T) {
	valid := ConnectOptions{
		Addr:           "localhost:6379",
		ConnectTimeout: time.Second,
		RetryInterval:  time.Millisecond,
		MaxWait:        time.Millisecond,
		PingTimeout:    time.Millisecond,
	}

	tests := []struct {
		name   string
		mutate func(*ConnectOptions)
	}{
		{name: "empty addr", mutate: func(o *ConnectOptions) { o.Addr = "" }},
		{name: "zero connect timeout", mutate: func(o *ConnectOptions) { o.ConnectTimeout = 0 }},
		{name: "zero retry interval", mutate: func(o *ConnectOptions) { o.RetryInterval = 0 }},
		{name: "zero max wait", mutate: func(o *ConnectOptions) { o.MaxWait = 0 }},
		{name: "zero ping timeout", mutate: func(o *ConnectOptions) { o.PingTimeout = 0 }},
		{name: "negative warn threshold", mutate: func(o *ConnectOptions) { o.WarnThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			if _, err := Connect(context.Background(), opts, logger.NewNop()); err == nil {
				t.Error("Connect() expected validation error")
			}
		})
	}
}

func TestConnectGivesUpWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := ConnectOptions{
		Addr:           "127.0.0.1:1",
		DialTimeout:    50 * time.Millisecond,
		ConnectTimeout: time.Second,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        10 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
	}

	if _, err := Connect(ctx, opts, logger.NewNop()); err == nil {
		t.Error("Connect() should fail with a cancelled context")
	}
}

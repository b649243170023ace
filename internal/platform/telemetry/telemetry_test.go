package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestNew_DisabledUsesNoop(t *testing.T) {
	tel, err := New(context.Background(), false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if tel.Meter == nil || tel.Tracer == nil {
		t.Fatal("noop telemetry must still provide meter and tracer")
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown failed: %v", err)
	}
}

func TestMetricInterval(t *testing.T) {
	tests := []struct {
		env  string
		want time.Duration
	}{
		{"", defaultMetricInterval},
		{"10s", 10 * time.Second},
		{"2m", 2 * time.Minute},
		{"often", defaultMetricInterval},
	}
	for _, tt := range tests {
		t.Setenv("OTEL_METRIC_INTERVAL", tt.env)
		if got := metricInterval(); got != tt.want {
			t.Errorf("metricInterval() with %q = %v, want %v", tt.env, got, tt.want)
		}
	}
}

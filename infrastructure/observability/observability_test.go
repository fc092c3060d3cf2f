package observability

import (
	"context"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.ServiceName != "reflex-go" {
		t.Errorf("ServiceName = %q, want reflex-go", cfg.ServiceName)
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing should be disabled by default")
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", cfg.Tracing.SampleRate)
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	for _, opt := range []Option{
		WithServiceName("reflex-test"),
		WithServiceVersion("1.2.3"),
		WithEnvironment("test"),
		WithTracing(ExporterStdout),
		WithTracingEndpoint("localhost:4317"),
		WithInsecureTracing(),
		WithSampleRate(0.25),
	} {
		opt(&cfg)
	}

	if cfg.ServiceName != "reflex-test" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.ServiceVersion != "1.2.3" {
		t.Errorf("ServiceVersion = %q", cfg.ServiceVersion)
	}
	if cfg.Environment != "test" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Exporter != ExporterStdout {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" || !cfg.Tracing.Insecure {
		t.Errorf("Tracing endpoint config = %+v", cfg.Tracing)
	}
	if cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("SampleRate = %v", cfg.Tracing.SampleRate)
	}
}

func TestNewWithTracingDisabled(t *testing.T) {
	t.Parallel()

	p, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewWithNoopExporter(t *testing.T) {
	t.Parallel()

	p, err := New(WithTracing(ExporterNoop))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewWithUnknownExporter(t *testing.T) {
	t.Parallel()

	if _, err := New(WithTracing(ExporterType("bogus"))); err == nil {
		t.Error("New() with an unknown exporter should fail")
	}
}

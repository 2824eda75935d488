// ABOUTME: Tests for telemetry provider creation and configuration validation
// ABOUTME: Validates provider initialization against real exporters and the no-op fallback

package telemetry

import (
	"context"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectNoop  bool
		expectError bool
	}{
		{
			name:        "disabled telemetry returns noop",
			cfg:         Config{Enabled: false},
			expectNoop:  true,
			expectError: false,
		},
		{
			name: "invalid config returns error",
			cfg: Config{
				Enabled:     true,
				ServiceName: "",
			},
			expectNoop:  false,
			expectError: true,
		},
		{
			name: "valid config builds a real provider",
			cfg: Config{
				ServiceName:        "test",
				ServiceVersion:     "1.0.0",
				Enabled:            true,
				Exporters:          []string{"stdout"},
				SampleRate:         1.0,
				OTLPEndpoint:       "http://localhost:4317",
				ExportTimeout:      DefaultConfig().ExportTimeout,
				BatchTimeout:       DefaultConfig().BatchTimeout,
				MaxQueueSize:       DefaultConfig().MaxQueueSize,
				MaxExportBatchSize: DefaultConfig().MaxExportBatchSize,
			},
			expectNoop:  false,
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tel, err := New(tt.cfg)

			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if tel == nil {
				t.Error("expected telemetry instance but got nil")
				return
			}

			ctx := context.Background()
			if tt.expectNoop {
				if _, ok := tel.(*NoopTelemetry); !ok {
					t.Errorf("expected NoopTelemetry, got %T", tel)
				}
			} else {
				provider, ok := tel.(*TelemetryProvider)
				if !ok {
					t.Fatalf("expected *TelemetryProvider, got %T", tel)
				}
				if provider.meter == nil || provider.tracer == nil {
					t.Error("provider built without a meter or tracer")
				}
				defer provider.Shutdown(ctx)
			}

			tel.RecordHistogram(ctx, "test", 1.0)
			tel.RecordCounter(ctx, "test", 1)
		})
	}
}

func TestNewWithDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	tel, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error with default config: %v", err)
	}
	if tel == nil {
		t.Fatal("expected telemetry instance but got nil")
	}
	defer tel.Shutdown(context.Background())

	ctx := context.Background()
	tel.RecordHistogram(ctx, "test.histogram", 1.5)
	tel.RecordCounter(ctx, "test.counter", 10)

	if _, ok := tel.(*TelemetryProvider); !ok {
		t.Errorf("expected a real provider from the enabled default config, got %T", tel)
	}
}

func TestNewWithInvalidConfigs(t *testing.T) {
	invalidConfigs := []Config{
		{
			Enabled:     true,
			ServiceName: "",
		},
		{
			Enabled:        true,
			ServiceName:    "test",
			ServiceVersion: "",
		},
		{
			Enabled:        true,
			ServiceName:    "test",
			ServiceVersion: "1.0.0",
			SampleRate:     -0.1,
		},
		{
			Enabled:        true,
			ServiceName:    "test",
			ServiceVersion: "1.0.0",
			SampleRate:     1.1,
		},
		{
			Enabled:        true,
			ServiceName:    "test",
			ServiceVersion: "1.0.0",
			SampleRate:     1.0,
			Exporters:      []string{"jaeger"},
		},
	}

	for i, cfg := range invalidConfigs {
		t.Run(fmt.Sprintf("invalid_config_%d", i), func(t *testing.T) {
			tel, err := New(cfg)

			if err == nil {
				t.Error("expected error for invalid config but got none")
			}
			if tel != nil {
				t.Error("expected nil telemetry for invalid config but got instance")
			}
		})
	}
}

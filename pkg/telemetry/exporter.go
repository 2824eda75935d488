// ABOUTME: OpenTelemetry exporter factory for creating the metric and trace exporters jetdb actually ships
// ABOUTME: Only wires exporters with a real backing library: stdout and OTLP

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

// createMetricExporters builds one metric.Exporter per entry in cfg.Exporters
// that can export metrics. OTLP here only covers traces (jetdb has no
// otlpmetricgrpc dependency), so only "stdout" produces a metric exporter.
func createMetricExporters(cfg Config) ([]metric.Exporter, error) {
	var exporters []metric.Exporter

	for _, name := range cfg.Exporters {
		if name != "stdout" {
			continue
		}
		exporter, err := createStdoutMetricExporter()
		if err != nil {
			return nil, fmt.Errorf("creating stdout metric exporter: %w", err)
		}
		exporters = append(exporters, exporter)
	}

	if len(exporters) == 0 {
		exporter, err := createStdoutMetricExporter()
		if err != nil {
			return nil, fmt.Errorf("creating default stdout metric exporter: %w", err)
		}
		exporters = append(exporters, exporter)
	}

	return exporters, nil
}

// createTraceExporters builds one trace.SpanExporter per entry in cfg.Exporters.
func createTraceExporters(cfg Config) ([]trace.SpanExporter, error) {
	var exporters []trace.SpanExporter

	for _, name := range cfg.Exporters {
		switch name {
		case "otlp":
			exporter, err := createOTLPTraceExporter(cfg)
			if err != nil {
				return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
			}
			exporters = append(exporters, exporter)

		case "stdout":
			exporter, err := createStdoutTraceExporter()
			if err != nil {
				return nil, fmt.Errorf("creating stdout trace exporter: %w", err)
			}
			exporters = append(exporters, exporter)
		}
	}

	if len(exporters) == 0 {
		exporter, err := createStdoutTraceExporter()
		if err != nil {
			return nil, fmt.Errorf("creating default stdout trace exporter: %w", err)
		}
		exporters = append(exporters, exporter)
	}

	return exporters, nil
}

func createStdoutMetricExporter() (metric.Exporter, error) {
	return stdoutmetric.New(
		stdoutmetric.WithPrettyPrint(),
	)
}

func createOTLPTraceExporter(cfg Config) (trace.SpanExporter, error) {
	return otlptracegrpc.New(
		context.Background(),
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
}

func createStdoutTraceExporter() (trace.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
	)
}

package otelcol

import (
	"context"
	"strings"

	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/otelcol/exporters"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module installs the global tracer provider when OTEL.ADDR is set. Without
// it spans go to the otel no-op provider.
var Module = fx.Module("otelcol",
	fx.Invoke(registerTracing),
)

func registerTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if strings.TrimSpace(cfg.Otel.Addr) == "" {
		zap.L().Info("[Otel] OTEL.ADDR not set, tracing disabled")
		return nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return err
	}

	tp := ProvideTrace(exporter, trace.WithResource(serviceResource(cfg)))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	zap.L().Info("[Otel] tracing enabled",
		zap.String("addr", cfg.Otel.Addr),
		zap.String("protocol", cfg.Otel.Protocol),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return nil
}

func newExporter(cfg *config.Config) (trace.SpanExporter, error) {
	if strings.EqualFold(cfg.Otel.Protocol, "grpc") {
		return exporters.ProvideGrpc(cfg)
	}
	return exporters.ProvideHttp(cfg)
}

func serviceResource(cfg *config.Config) *resource.Resource {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.AppName),
		attribute.String("service.version", cfg.AppVersion),
		attribute.String("deployment.environment", cfg.AppEnv),
	))
	if err != nil {
		return resource.Default()
	}
	return res
}

func ProvideTrace(exporter trace.SpanExporter, opts ...trace.TracerProviderOption) *trace.TracerProvider {
	if len(opts) == 0 {
		opts = []trace.TracerProviderOption{trace.WithResource(resource.Default())}
	}

	opts = append(opts, trace.WithBatcher(exporter))

	return trace.NewTracerProvider(opts...)
}

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RegisterBackendGauge exports <namespace>_search_backend_up, 1 while up reports
// true and 0 otherwise. up is called on every scrape and must not block.
func RegisterBackendGauge(
	meterProvider metric.MeterProvider,
	namespace, backend string,
	up func() bool,
) error {
	meter := meterProvider.Meter(namespace)

	gauge, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_search_backend_up", namespace),
		metric.WithDescription("Whether the last check of the search backend succeeded"),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend gauge: %w", err)
	}

	attrs := metric.WithAttributes(attribute.String("backend", backend))
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var value int64
		if up() {
			value = 1
		}
		o.ObserveInt64(gauge, value, attrs)
		return nil
	}, gauge)
	if err != nil {
		return fmt.Errorf("failed to register backend gauge callback: %w", err)
	}
	return nil
}

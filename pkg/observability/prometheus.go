package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider bundles the OTel MeterProvider backing the engine's instruments
// with the Prometheus registry it is exported through.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry
}

// NewProvider creates an OTel MeterProvider with a Prometheus exporter
// reader, using an independent registry so repeated calls (e.g. in tests)
// never collide over global collector registration.
func NewProvider() (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Provider{meterProvider: mp, registry: registry}, nil
}

// Meter returns an OTel Meter for instrument creation (e.g. NewWalkMetrics).
func (p *Provider) Meter(name string) metric.Meter {
	return p.meterProvider.Meter(name)
}

// Handler returns the http.Handler serving the Prometheus scrape endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr. It blocks until the
// server returns an error and offers no shutdown hook; callers typically run
// it in its own goroutine.
func (p *Provider) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())

	server := &http.Server{Addr: addr, Handler: mux} //nolint:exhaustruct // other fields use zero-value defaults.

	if err := server.ListenAndServe(); err != nil {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}

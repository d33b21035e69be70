package vaultflow

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/viant/afs"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/model/types"
	"github.com/viant/vaultflow/service/dispatcher"
	"github.com/viant/vaultflow/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service
type Option func(s *Service)

// WithLogger sets the logger shared by every component
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithFileSystem overrides the afs service backing the vault
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithHTTPClient sets the http client used by the email and social executors
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) { s.httpClient = client }
}

// WithExtensionServices registers additional executors, replacing built-in
// services with the same name.
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = append(s.extensionServices, services...)
	}
}

// WithRoute overrides the dispatch route of a kind
func WithRoute(kind model.Kind, route dispatcher.Route) Option {
	return func(s *Service) {
		s.dispatcherOptions = append(s.dispatcherOptions, dispatcher.WithRoute(kind, route))
	}
}

// WithTracing configures OpenTelemetry with the stdout exporter, writing to
// outputFile when set.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.logger.Warn().Err(err).Msg("tracing disabled")
		}
	}
}

// WithTracingExporter configures OpenTelemetry using a custom exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.logger.Warn().Err(err).Msg("tracing disabled")
		}
	}
}

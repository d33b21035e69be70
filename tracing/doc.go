// Package tracing wraps OpenTelemetry so that decision handling and side
// effect dispatch can be traced without importing the SDK everywhere.
// Spans are no-op until Init or InitWithExporter installs a provider.
package tracing

// Package httpapi serves the approval queue, triage listings and health
// over JSON HTTP endpoints.
package httpapi

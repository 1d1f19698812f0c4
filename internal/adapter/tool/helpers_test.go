package tool

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/infrastructure/tracking"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
func (l nopLogger) WithField(key string, value any) output.LoggerPort {
	return l
}
func (nopLogger) Close() error { return nil }

func newTrackingClient(t *testing.T, handler http.HandlerFunc) *tracking.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := tracking.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	return tracking.NewClient(cfg)
}

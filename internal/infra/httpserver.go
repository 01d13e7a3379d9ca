package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer wraps http.Server with the configured timeouts and a graceful
// shutdown hook.
type HTTPServer struct {
	inner http.Server
}

func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{inner: http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Addr returns the listen address.
func (s *HTTPServer) Addr() string { return s.inner.Addr }

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *HTTPServer) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

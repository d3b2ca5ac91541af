// Package httpcontroller serves the advisor page: the reading form, the
// latest result, the history chart and the records export.
package httpcontroller

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coldchain-go/coldchain/internal/advisor"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/datastore"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Submitter runs one form submission.
type Submitter interface {
	Submit(ctx context.Context, sub advisor.Submission) (*advisor.Outcome, error)
}

// RecordReader reads the full record set for the chart and exports.
type RecordReader interface {
	ReadAll(ctx context.Context) ([]datastore.Prediction, error)
}

// Server encapsulates the Echo server and its collaborators.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings

	advisor        Submitter
	records        RecordReader
	metricsHandler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler exposes h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// New initializes the HTTP server. Routes are registered immediately; call
// Start to listen.
func New(settings *conf.Settings, adv Submitter, records RecordReader, opts ...Option) *Server {
	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		advisor:  adv,
		records:  records,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()
	s.Echo.HTTPErrorHandler = s.errorHandler

	s.setupTemplateRenderer()
	s.configureMiddleware()
	s.initRoutes()
	return s
}

// Address is the listen address built from the web server settings.
func (s *Server) Address() string {
	return net.JoinHostPort(s.Settings.WebServer.Host, s.Settings.WebServer.Port)
}

// Start listens until ctx is canceled, then shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	log := GetLogger()
	errChan := make(chan error, 1)

	go func() {
		log.Info("HTTP server starting", logger.String("address", s.Address()))
		if err := s.Echo.Start(s.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return errors.New(err).
			Component("httpcontroller").
			Category(errors.CategoryHTTP).
			Context("address", s.Address()).
			Build()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("HTTP server shutting down")
	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		return errors.New(err).
			Component("httpcontroller").
			Category(errors.CategoryHTTP).
			Context("operation", "shutdown").
			Build()
	}
	return nil
}

// errorHandler logs server-side failures and renders echo errors as text.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code >= http.StatusInternalServerError {
		GetLogger().WithContext(c.Request().Context()).Error("request failed",
			logger.String("method", c.Request().Method),
			logger.String("path", c.Request().URL.Path),
			logger.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.String(code, msg)
}

package httpcontroller

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/coldchain-go/coldchain/internal/logger"
)

// RequestIDHeader carries the per-request trace id.
const RequestIDHeader = "X-Request-ID"

// rateLimitExpiry is how long an idle client's limiter is kept.
const rateLimitExpiry = 3 * time.Minute

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(s.TraceIDMiddleware())
	if s.Settings.WebServer.Debug {
		s.Echo.Use(s.RequestLoggerMiddleware())
	}
	s.Echo.Use(s.GzipMiddleware())
}

// TraceIDMiddleware reuses the client's request id or generates one, and
// attaches it to the request context so module loggers pick it up.
func (s *Server) TraceIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()[:8]
			}
			c.Response().Header().Set(RequestIDHeader, id)
			c.SetRequest(req.WithContext(logger.WithTraceID(req.Context(), id)))
			return next(c)
		}
	}
}

// RequestLoggerMiddleware logs one line per request.
func (s *Server) RequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
				logger.String("client_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, logger.Error(v.Error))
			}
			GetLogger().WithContext(c.Request().Context()).Debug("request", fields...)
			return nil
		},
	})
}

// GzipMiddleware compresses page responses.
func (s *Server) GzipMiddleware() echo.MiddlewareFunc {
	return middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     6,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}

// PredictRateLimiter limits form submissions per client IP. It returns nil
// when rate limiting is disabled.
func (s *Server) PredictRateLimiter() echo.MiddlewareFunc {
	ws := s.Settings.WebServer
	if ws.RateLimit <= 0 {
		return nil
	}
	burst := ws.Burst
	if burst < 1 {
		burst = 1
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(ws.RateLimit),
				Burst:     burst,
				ExpiresIn: rateLimitExpiry,
			},
		),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			GetLogger().WithContext(c.Request().Context()).Warn("submission rate limited",
				logger.String("client_ip", identifier))
			return c.String(http.StatusTooManyRequests, "Too many submissions, please wait before trying again")
		},
	})
}

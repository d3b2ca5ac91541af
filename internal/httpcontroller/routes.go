package httpcontroller

import (
	"github.com/labstack/echo/v4"
)

// initRoutes registers the page, export and health routes.
func (s *Server) initRoutes() {
	s.Echo.GET("/", s.handleIndex)

	var predictMiddleware []echo.MiddlewareFunc
	if limiter := s.PredictRateLimiter(); limiter != nil {
		predictMiddleware = append(predictMiddleware, limiter)
	}
	s.Echo.POST("/predict", s.handlePredict, predictMiddleware...)

	s.Echo.GET("/records.xlsx", s.handleRecordsXLSX)
	s.Echo.GET("/healthz", s.handleHealthz)

	if s.metricsHandler != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.metricsHandler))
	}
}

package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/focus-tracker/internal/infrastructure/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggingConfig struct {
	// Skipper defines a function to skip middleware.
	Skipper middleware.Skipper
}

// Logging writes one access line per request, 5xx at error level, 4xx at warn level and the rest at debug level
func Logging(base *zap.Logger, options ...*LoggingConfig) echo.MiddlewareFunc {
	cfg := &LoggingConfig{
		Skipper: middleware.DefaultSkipper,
	}
	if len(options) > 0 {
		option := options[0]
		if option.Skipper != nil {
			cfg.Skipper = option.Skipper
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the reply so the logged status is the real one
				c.Error(err)
			}

			req := c.Request()
			code := c.Response().Status
			fields := []zap.Field{
				zap.String("trace.id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("http.request.method", req.Method),
				zap.String("url.path", req.URL.Path),
				zap.String("route", c.Path()),
				zap.String("client.address", c.RealIP()),
				zap.Int64("http.request.body.byte", req.ContentLength),
				zap.Int64("http.response.body.byte", c.Response().Size),
				zap.Int("http.response.status_code", code),
				zap.Duration("http.latency", time.Since(start)),
			}
			if len(c.ParamNames()) > 0 {
				fields = append(fields,
					zap.Strings("route.params.name", c.ParamNames()),
					zap.Strings("route.params.value", c.ParamValues()),
				)
			}
			if ce := base.Check(levelOf(code), http.StatusText(code)); ce != nil {
				ce.Write(fields...)
			}
			return nil
		}
	}
}

func levelOf(code int) zapcore.Level {
	switch {
	case code >= http.StatusInternalServerError:
		return zap.ErrorLevel
	case code >= http.StatusBadRequest:
		return zap.WarnLevel
	}
	return zap.DebugLevel
}

// SetTraceLogger puts a logger bound to the request trace ID into the request context,
// the stores and use cases pick it up with logging.ExtractLoggerFromContext
func SetTraceLogger(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			logger := base.With(
				zap.String("trace.id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("route", c.Path()),
			)
			c.SetRequest(r.WithContext(logging.SetLoggerInContext(r.Context(), logger)))
			return next(c)
		}
	}
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/raulashish/FashionStore/pkg/logger"
)

// RequestLogger logs one structured line per request, at warn for 4xx and
// error for 5xx responses.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		statusCode := c.Response().StatusCode()
		ctx := c.UserContext()

		logEvent := logger.WithContext(ctx).Info()
		if statusCode >= 500 {
			logEvent = logger.WithContext(ctx).Error()
		} else if statusCode >= 400 {
			logEvent = logger.WithContext(ctx).Warn()
		}

		traceID := "no-trace"
		if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		}

		logEvent.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Int("status", statusCode).
			Dur("duration", duration).
			Int("response_size", len(c.Response().Body())).
			Str("trace_id", traceID).
			Msg("request completed")

		if err != nil {
			logger.Error(ctx).
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("request error")
		}

		return err
	}
}

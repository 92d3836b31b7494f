package daemon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ginLogger logs every request through logrus. Client errors are warnings,
// server errors are errors and everything else is debug output.
func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handlers may rewrite c.Request.URL.Path.
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := logrus.Fields{
			"statusCode": statusCode,
			"latency":    latency.Round(time.Microsecond).String(),
			"method":     c.Request.Method,
			"path":       path,
			"dataLength": max(c.Writer.Size(), 0),
		}
		if id := c.Param("id"); id != "" {
			fields["session"] = id
		}
		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			errs := c.Errors.ByType(gin.ErrorTypePrivate).String()
			if statusCode >= http.StatusInternalServerError {
				entry.Error(errs)
			} else {
				entry.Warn(errs)
			}
			return
		}

		msg := fmt.Sprintf("%s %s %d (%s)", c.Request.Method, path, statusCode, latency.Round(time.Millisecond))
		switch {
		case statusCode >= http.StatusInternalServerError:
			entry.Error(msg)
		case statusCode >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Debug(msg)
		}
	}
}

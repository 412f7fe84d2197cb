// Package logger configures the process-wide logrus logger and the gin request logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Setup applies level and formatter to the standard logrus logger.
// An unknown level falls back to info.
func Setup(level string, json bool) {
	SetupOutput(os.Stderr, level, json)
}

// SetupOutput is Setup with an explicit destination.
func SetupOutput(out io.Writer, level string, json bool) {
	logrus.SetOutput(out)

	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
		logrus.Warnf("unknown log level %q, using info", level)
	}
	logrus.SetLevel(parsed)
}

// Middleware logs one entry per handled request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		entry := logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
			"bytes":   c.Writer.Size(),
		})

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

package middleware

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/utils"
)

const requestIDHeader = "X-Request-Id"

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// quietPaths are logged at debug level when they succeed.
var quietPaths = map[string]bool{"/": true, "/health": true}

// RequestLogger tags each request with an X-Request-Id and logs it once it
// completes, at a level chosen by status.
func RequestLogger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(requestIDHeader)
		if !validRequestID.MatchString(reqID) {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Set("request_id", reqID)

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"bytes_in":   c.Request.ContentLength,
			"bytes_out":  c.Writer.Size(),
		}
		for _, k := range []string{"subject", "job_id"} {
			if v := c.GetString(k); v != "" {
				fields[k] = v
			}
		}
		if last := c.Errors.Last(); last != nil {
			fields["errors"] = c.Errors.String()
			if code := utils.CodeOf(last.Err); code != "" {
				fields["error_code"] = string(code)
			}
		}
		entry := l.WithFields(fields)

		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		case quietPaths[c.FullPath()]:
			entry.Debug("request")
		default:
			entry.Info("request")
		}
	}
}

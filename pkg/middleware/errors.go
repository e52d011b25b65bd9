package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gehenna/gehenna/pkg/logger"
)

// ErrorMapper converts a handler error into a status code and a message that
// is safe to show to clients.
type ErrorMapper func(err error) (status int, message string)

// ErrorHandler renders the last error a handler attached with c.Error. Handlers
// only attach errors and return; this middleware owns the response body and
// the log line. With debug the underlying cause is added as "detail".
func ErrorHandler(mapErr ErrorMapper, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		ge := c.Errors.Last()
		status, msg := mapErr(ge.Err)

		lvl := logger.LevelWarn
		if status >= http.StatusInternalServerError {
			lvl = logger.LevelError
		}
		ev := logger.Log(lvl).
			Str("request_id", GetRequestID(c)).
			Str("route", c.FullPath()).
			Int("status", status).
			Err(ge.Err)
		if meta, ok := ge.Meta.(gin.H); ok {
			ev = ev.Fields(map[string]interface{}(meta))
		}
		ev.Msg("request failed")

		if c.Writer.Written() {
			return
		}
		body := gin.H{"error": msg}
		if debug {
			body["detail"] = ge.Err.Error()
		}
		c.AbortWithStatusJSON(status, body)
	}
}

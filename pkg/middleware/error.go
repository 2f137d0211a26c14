package middleware

import (
	"errors"
	"net/http"

	"smallbiznis-promotion/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last error attached to the context with c.Error. Errors
// that are not errutil.BaseError are reported as INTERNAL without leaking
// their text.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var base errutil.BaseError
		if errors.As(last.Err, &base) {
			if base.Code.HTTPStatus() >= http.StatusInternalServerError {
				zap.L().Error("request failed",
					zap.String("path", c.FullPath()),
					zap.Error(last.Err),
				)
			}
			c.JSON(base.Code.HTTPStatus(), base.JSON())
			return
		}

		zap.L().Error("unhandled request error", zap.String("path", c.FullPath()), zap.Error(last.Err))
		internal, _ := errutil.As(errutil.Internal("internal server error", nil))
		c.JSON(http.StatusInternalServerError, internal.JSON())
	}
}

// Abort attaches err to the context and stops the handler chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

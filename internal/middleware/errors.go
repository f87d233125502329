package middleware

import (
	"net/http"

	"github.com/AntonTsoy/book-catalog/internal/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInternal = "Internal Server Error"
	msgNoRoute  = "The page you're looking for doesn't exist."
)

type result struct {
	Message string                `json:"message"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

type errorBody struct {
	Result result `json:"result"`
}

// ErrorHandler renders the last error pushed with c.Error once the chain
// has finished.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		appErr, ok := apperror.As(err)
		if !ok {
			log.Error("unhandled error",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, errorBody{Result: result{Message: msgInternal}})
			return
		}

		if appErr.Status >= http.StatusInternalServerError {
			log.Error(appErr.Message, zap.String("path", c.Request.URL.Path), zap.Error(appErr.Err))
		}
		c.JSON(appErr.Status, errorBody{
			Result: result{Message: appErr.Message, Errors: appErr.Fields},
		})
	}
}

func NoRoute(c *gin.Context) {
	_ = c.Error(apperror.NotFound(msgNoRoute))
}

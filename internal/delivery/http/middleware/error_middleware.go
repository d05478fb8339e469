package middleware

import (
	"errors"
	"net/http"

	"engitech-contact-backend/internal/delivery/http/response"
	"engitech-contact-backend/internal/domain"
	"engitech-contact-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorDetail is attached to error responses for client-input failures, and to every
// failure when dev mode is on.
type errorDetail struct {
	Kind   apperror.Kind `json:"kind"`
	Fields []string      `json:"fields,omitempty"`
	Detail string        `json:"detail,omitempty"`
}

// ErrorHandler renders the last error pushed with c.Error. With devMode set, the
// underlying cause is included in the response body.
func ErrorHandler(log *zap.Logger, devMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			var detail *errorDetail
			if appErr.Kind.IsClientError() || devMode {
				detail = &errorDetail{Kind: appErr.Kind, Fields: appErr.Fields}
			}
			if appErr.Err != nil {
				if !appErr.Kind.IsClientError() {
					log.Error("request failed",
						zap.String("request_id", c.GetString(string(domain.KeyRequestID))),
						zap.String("path", c.FullPath()),
						zap.String("kind", string(appErr.Kind)),
						zap.Error(appErr.Err),
					)
				}
				if devMode {
					detail.Detail = appErr.Err.Error()
				}
			}

			if detail != nil {
				response.Error(c, appErr.Code, appErr.Message, detail)
			} else {
				response.Error(c, appErr.Code, appErr.Message, nil)
			}
			return
		}

		// SECURITY: Never expose internal error details to clients.
		log.Error("Internal Server Error",
			zap.String("request_id", c.GetString(string(domain.KeyRequestID))),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}

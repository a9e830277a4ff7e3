package security

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes bounds ranking and scoring request bodies
const DefaultMaxBodyBytes = 1 << 20

var allowedContentTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// ValidateContentType rejects bodies that are neither JSON nor form encoded
func ValidateContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := strings.ToLower(c.GetHeader("Content-Type"))

		if contentType != "" && c.Request.ContentLength != 0 {
			found := false
			for _, allowed := range allowedContentTypes {
				if strings.Contains(contentType, allowed) {
					found = true
					break
				}
			}

			if !found {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"ok":      false,
					"error":   "UNSUPPORTED_MEDIA_TYPE",
					"message": "content type must be JSON or form data",
				})
				return
			}
		}

		c.Next()
	}
}

// MaxBodySize caps the number of bytes handlers may read from the body
func MaxBodySize(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// RequestTimeout bounds the request context, which also bounds the external ranking call
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

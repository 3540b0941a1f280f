package middlewares

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIdHeader = "X-Request-Id"

// RequestId tags every request with an id so storage-layer log lines can be
// correlated with the request that triggered them. An id supplied by the
// caller is kept, otherwise one is generated.
func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIdHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Writer.Header().Set(requestIdHeader, id)
		c.Next()
	}
}

// Cors allows the web client to read the API from another origin. Read-only
// API, so only safe methods are exposed.
func Cors() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", requestIdHeader},
		MaxAge:       12 * time.Hour,
	})
}

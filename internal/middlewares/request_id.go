package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/samborkent/uuidv7"
)

const (
	RequestIdHeader = "X-Request-Id"
	requestIdKey    = "requestId"
)

// RequestId tags every request with a correlation id, reusing one sent by the client.
func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIdHeader)
		if len(id) == 0 {
			id = uuidv7.New().String()
		}

		c.Set(requestIdKey, id)
		c.Header(RequestIdHeader, id)
		c.Next()
	}
}

func RequestIdFrom(c *gin.Context) string {
	return c.GetString(requestIdKey)
}

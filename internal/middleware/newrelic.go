package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicErrors reports errors attached to the gin context on the request's
// New Relic transaction. It must run after nrgin.Middleware.
func NewRelicErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}

		if requestID, ok := c.Get("request_id"); ok {
			txn.AddAttribute("request_id", requestID)
		}
	}
}

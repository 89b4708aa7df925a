package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appctx "tourreg/internal/core/context"
)

// HeaderOperatorID carries the identity of the clerk or system submitting a change.
// Authentication happens at the gateway; the registry trusts this header.
const HeaderOperatorID = "X-Operator-ID"

// Operator copies the operator identity into the request context for the audit trail.
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if op := strings.TrimSpace(c.GetHeader(HeaderOperatorID)); op != "" {
			ctx := appctx.WithOperator(c.Request.Context(), &appctx.OperatorContext{
				OperatorID: op,
				Source:     "api",
			})
			c.Request = c.Request.WithContext(ctx)
			c.Set("operator_id", op)
		}
		c.Next()
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	OperatorHeader  = "X-Operator"
	operatorKey     = "operator"
	DefaultOperator = "system"
)

// Operator เก็บชื่อผู้ใช้งานจาก header ไว้ใน context สำหรับ audit fields
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		op := strings.TrimSpace(c.GetHeader(OperatorHeader))
		if op == "" {
			op = DefaultOperator
		}
		c.Set(operatorKey, op)
		c.Next()
	}
}

func OperatorFrom(c *gin.Context) string {
	if op := c.GetString(operatorKey); op != "" {
		return op
	}
	return DefaultOperator
}

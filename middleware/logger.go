package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		icon := "➡️"
		switch {
		case status >= 500:
			icon = "❌"
		case status >= 400:
			icon = "⚠️"
		}
		log.Printf("%s %s %s %s %d %s op=%s", icon, c.Request.Method, c.Request.URL.Path, c.ClientIP(), status, time.Since(start), OperatorFrom(c))
	}
}

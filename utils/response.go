package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// JSONError: error.code ใช้เป็น i18n key ฝั่ง frontend
func JSONError(c *gin.Context, code int, errCode, message string, extra gin.H) {
	body := gin.H{"success": false, "error": gin.H{"code": errCode, "message": message}}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(code, body)
}

// ParseID reads a positive numeric path param.
func ParseID(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ParseDate accepts YYYY-MM-DD; empty means no date.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type apiError struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// fail writes an error body. Errors are always distinguishable from an
// empty result set, which comes back 200 with items: [].
func fail(c *gin.Context, status int, msg, detail string) {
	c.JSON(status, apiError{Error: msg, Detail: detail})
}

func floatQuery(c *gin.Context, key string, defaultVal float64) float64 {
	raw := c.Query(key)
	if raw == "" || raw == "any" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return defaultVal
}

func intQuery(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if i, err := strconv.Atoi(raw); err == nil {
			return i
		}
	}
	return defaultVal
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"memoryvault/core"

	"github.com/gin-gonic/gin"
)

// GetErrorLogs returns retained error log entries, newest first.
// Optional query params: level=ERROR|WARN, limit=N.
func (h *Handler) GetErrorLogs(c *gin.Context) {
	level := strings.ToUpper(strings.TrimSpace(c.Query("level")))
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(c, http.StatusBadRequest, core.Invalid("limit", "limit must be a non-negative integer").Error())
			return
		}
		limit = n
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   core.ErrorLoggerInstance.GetErrorLogs(level, limit),
		"totals": core.ErrorLoggerInstance.Totals(),
	})
}

// ClearErrorLogs removes all retained entries
func (h *Handler) ClearErrorLogs(c *gin.Context) {
	core.ErrorLoggerInstance.ClearErrorLogs()
	success(c)
}

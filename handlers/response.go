package handlers

import (
	"errors"
	"log"
	"net/http"

	"memoryvault/core"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidBody   = "Invalid request body"
	msgInternalError = "Internal server error"
)

func jsonError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// bindJSON decodes the request body into req, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		jsonError(c, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// respondError maps service errors onto the API error shape. Validation errors
// carry their own message; everything else is logged and hidden.
func respondError(c *gin.Context, op string, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		jsonError(c, http.StatusBadRequest, ve.Error())
		return
	}

	status := core.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s failed: %v", op, err)
		core.LogErrorWithContext(core.SourceHTTP, op+" failed", err.Error(), map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		jsonError(c, http.StatusInternalServerError, msgInternalError)
		return
	}
	jsonError(c, status, http.StatusText(status))
}

func success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLogger_EvictsOldest(t *testing.T) {
	l := NewErrorLogger(2)
	l.LogError("ERROR", SourceMail, "one", "", nil)
	l.LogError("WARN", SourceSpotify, "two", "", map[string]interface{}{"status": 429})
	l.LogError("ERROR", SourceMail, "three", "", nil)

	logs := l.GetErrorLogs("", 0)
	require.Len(t, logs, 2)
	assert.Equal(t, "three", logs[0].Message)
	assert.Equal(t, "two", logs[1].Message)
	assert.JSONEq(t, `{"status":429}`, string(logs[1].Context))
	assert.NotEmpty(t, logs[0].Stack)

	assert.Nil(t, l.GetErrorLogByID(1))
	assert.Equal(t, "two", l.GetErrorLogByID(2).Message)
	assert.Equal(t, map[string]uint64{"ERROR": 2, "WARN": 1}, l.Totals())
}

func TestErrorLogger_FilterAndLimit(t *testing.T) {
	l := NewErrorLogger(10)
	for i := 0; i < 5; i++ {
		l.LogError("ERROR", SourceHTTP, fmt.Sprintf("e%d", i), "", nil)
	}
	l.LogError("WARN", SourceHTTP, "w", "", nil)

	assert.Len(t, l.GetErrorLogs("warn", 0), 1)
	errs := l.GetErrorLogs("ERROR", 2)
	require.Len(t, errs, 2)
	assert.Equal(t, "e4", errs[0].Message)

	l.ClearErrorLogs()
	assert.Empty(t, l.GetErrorLogs("", 0))
	assert.EqualValues(t, 5, l.Totals()["ERROR"])
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{Required("title"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", ErrInvalidRequest), http.StatusBadRequest},
		{ErrInvalidToken, http.StatusUnauthorized},
		{ErrAccessDenied, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{NewUpstreamError("spotify unavailable", errors.New("eof")), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), "%v", tt.err)
	}
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "title is required", Required("title").Error())
	assert.Equal(t, "memoryDate must be YYYY-MM-DD", Invalid("memoryDate", "%s must be YYYY-MM-DD", "memoryDate").Error())
	assert.ErrorIs(t, Required("x"), ErrInvalidRequest)
}

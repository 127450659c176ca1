package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"Faran/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFail_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrMissingField, http.StatusBadRequest},
		{fmt.Errorf("%w: x", service.ErrEmailTaken), http.StatusConflict},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrSelfFollow, http.StatusForbidden},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			fail(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestFail_InternalErrorNotLeaked(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fail(c, errors.New("password=hunter2"))
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.Len(t, c.Errors, 1)
}

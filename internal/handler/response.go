package handler

import (
	"errors"
	"net/http"

	"Faran/internal/service"

	"github.com/gin-gonic/gin"
)

var kindStatus = map[service.Kind]int{
	service.KindValidation:       http.StatusBadRequest,
	service.KindConflict:         http.StatusConflict,
	service.KindNotFound:         http.StatusNotFound,
	service.KindUnsupportedMedia: http.StatusUnsupportedMediaType,
	service.KindUnauthorized:     http.StatusUnauthorized,
	service.KindForbidden:        http.StatusForbidden,
}

// fail 业务错误按 Kind 映射状态码；未知错误记入 c.Errors 并返回 500
func fail(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"code": "PAYLOAD_TOO_LARGE", "msg": "upload is too large"})
		return
	}

	var e *service.Error
	if errors.As(err, &e) {
		if status, ok := kindStatus[e.Kind]; ok {
			c.JSON(status, gin.H{"code": e.Code, "msg": e.Message})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL", "msg": "internal server error"})
}

func badParams(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_PARAMS", "msg": "invalid params"})
}

// parseMultipart 非 multipart 请求交给后续按缺字段处理
func parseMultipart(c *gin.Context) error {
	err := c.Request.ParseMultipartForm(32 << 20)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

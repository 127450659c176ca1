package handler

import (
	"errors"
	"net/http"

	"Faran/internal/middleware"
	"Faran/internal/service"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	svc *service.UploadService
}

func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// CreatePost 上传图片帖子：multipart 字段 caption + picture
func (h *UploadHandler) CreatePost(c *gin.Context) {
	if err := parseMultipart(c); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fail(c, err)
			return
		}
		badParams(c)
		return
	}

	fh, err := c.FormFile("picture")
	if err != nil {
		fail(c, service.ErrMissingField)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	up, err := h.svc.CreatePost(c.Request.Context(), middleware.UserID(c), c.PostForm("caption"), fh.Filename, f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": up.ID, "picture": up.Picture})
}

package handler

import (
	"net/http"

	"Faran/internal/middleware"
	"Faran/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	svc *service.FollowService
}

func NewFollowHandler(svc *service.FollowService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

// Follow 关注 :username
func (h *FollowHandler) Follow(c *gin.Context) {
	if err := h.svc.Follow(c.Request.Context(), middleware.UserID(c), c.Param("username")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Unfollow 取关 :username
func (h *FollowHandler) Unfollow(c *gin.Context) {
	if err := h.svc.Unfollow(c.Request.Context(), middleware.UserID(c), c.Param("username")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// ListFollowers 粉丝列表
func (h *FollowHandler) ListFollowers(c *gin.Context) {
	names, err := h.svc.ListFollowers(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": names})
}

// ListFollowings 关注列表
func (h *FollowHandler) ListFollowings(c *gin.Context) {
	names, err := h.svc.ListFollowings(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": names})
}

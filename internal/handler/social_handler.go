package handler

import (
	"net/http"

	"Faran/internal/middleware"
	"Faran/internal/service"

	"github.com/gin-gonic/gin"
)

// SocialHandler 首页流、主页与搜索
type SocialHandler struct {
	feed    *service.FeedService
	profile *service.ProfileService
	search  *service.SearchService
}

func NewSocialHandler(feed *service.FeedService, profile *service.ProfileService, search *service.SearchService) *SocialHandler {
	return &SocialHandler{feed: feed, profile: profile, search: search}
}

func (h *SocialHandler) Feed(c *gin.Context) {
	feed, err := h.feed.HomeFeed(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *SocialHandler) Profile(c *gin.Context) {
	p, err := h.profile.Profile(c.Request.Context(), middleware.UserID(c), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *SocialHandler) Search(c *gin.Context) {
	res, err := h.search.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": res})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studycircle/feedmux/feed"
	"github.com/studycircle/feedmux/notifier"
	"github.com/studycircle/feedmux/utils"
)

// Handler owns the REST surface. All feed reads go through the single
// Assembler, all friend-graph mutations go through the Dispatcher for their
// notification side effects.
type Handler struct {
	DB         *gorm.DB
	Assembler  *feed.Assembler
	Dispatcher *notifier.Dispatcher
	// Redis is optional; trending tags fall back to a direct query when nil.
	Redis *utils.RedisClient
}

// RegisterRoutes binds every route of the service onto the router.
func RegisterRoutes(router *gin.Engine, h *Handler) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/feed", h.GetFeed)
	router.GET("/feed/preferences", h.GetFeedPreferences)
	router.POST("/feed/preferences", h.SaveFeedPreferences)

	router.POST("/friend-requests", h.CreateFriendRequest)
	router.PATCH("/friend-requests/:id", h.RespondFriendRequest)
	router.GET("/friend-requests/pending", h.PendingFriendRequests)
	router.GET("/friend-requests/status", h.FriendRequestStatus)

	router.GET("/friends", h.ListFriends)
	router.GET("/friends/count", h.FriendsCount)
	router.DELETE("/friends/:id", h.Unfriend)

	router.GET("/notifications", h.ListNotifications)
	router.PATCH("/notifications/:id/read", h.MarkNotificationRead)

	router.POST("/posts", h.CreatePost)
	router.GET("/posts", h.ListAuthorPosts)
	router.DELETE("/posts/:id", h.DeletePost)

	router.GET("/trending/tags", h.TrendingTags)
}

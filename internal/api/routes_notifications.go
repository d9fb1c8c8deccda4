package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mhartley/notifeed/internal/handlers"
)

func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler) {
	group := api.Group("/notifications")
	{
		group.GET("", handler.Feed)
		group.POST("/mark-all-read", handler.MarkAllRead)

		group.POST("", handler.Create)
		group.POST("/:id/read", handler.MarkRead)
		group.POST("/:id/unread", handler.MarkUnread)
		group.DELETE("/:id", handler.Delete)
	}
}

package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches notification endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, allUsers gin.HandlerFunc) {
	notifications := router.Group("/notifications", allUsers)

	notifications.GET("", handler.List)
	notifications.PUT("/:notificationId/read", handler.MarkRead)
}

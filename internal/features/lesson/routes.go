package lesson

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches lesson endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, allUsers, staff gin.HandlerFunc) {
	lessons := router.Group("/courses/:courseId/lessons")

	lessons.GET("", allUsers, handler.List)
	lessons.POST("", staff, handler.Create)
	lessons.PUT("/:lessonId", staff, handler.Update)
	lessons.DELETE("/:lessonId", staff, handler.Delete)

	router.GET("/lessons/:lessonId", allUsers, handler.GetByID)
}

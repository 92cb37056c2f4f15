package course

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches course endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, allUsers, staff gin.HandlerFunc) {
	courses := router.Group("/courses")

	courses.GET("", allUsers, handler.List)
	courses.GET("/:courseId", allUsers, handler.GetByID)
	courses.POST("", staff, handler.Create)
	courses.PUT("/:courseId", staff, handler.Update)
	courses.POST("/:courseId/publish", staff, handler.Publish)
	courses.DELETE("/:courseId", staff, handler.Delete)
}

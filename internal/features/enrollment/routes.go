package enrollment

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches enrollment endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, allUsers, admin gin.HandlerFunc) {
	router.POST("/courses/:courseId/enroll", allUsers, handler.Enroll)

	enrollments := router.Group("/enrollments")
	enrollments.GET("", allUsers, handler.List)
	enrollments.GET("/:enrollmentId", allUsers, handler.GetByID)
	enrollments.PUT("/:enrollmentId/progress", allUsers, handler.UpdateProgress)
	enrollments.POST("/:enrollmentId/cancel", admin, handler.Cancel)
}

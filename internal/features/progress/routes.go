package progress

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches progress endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, allUsers gin.HandlerFunc) {
	router.GET("/courses/:courseId/progress", allUsers, handler.CourseProgress)
	router.POST("/lessons/:lessonId/quiz-complete", allUsers, handler.CompleteQuiz)
	router.POST("/lessons/:lessonId/track", allUsers, handler.Track)
}

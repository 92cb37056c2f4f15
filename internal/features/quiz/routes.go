package quiz

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches quiz endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, allUsers, staff gin.HandlerFunc) {
	router.POST("/courses/:courseId/quizzes", staff, handler.Create)
	router.GET("/lessons/:lessonId/quiz", allUsers, handler.GetByLesson)

	quizzes := router.Group("/quizzes")
	quizzes.GET("/:quizId", allUsers, handler.GetByID)
	quizzes.DELETE("/:quizId", staff, handler.Delete)
	quizzes.POST("/:quizId/attempt", allUsers, handler.SubmitAttempt)
	quizzes.GET("/:quizId/attempts", allUsers, handler.ListAttempts)
}

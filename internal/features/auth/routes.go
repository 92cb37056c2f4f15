package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches authentication endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticated gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.GET("/me", authenticated, handler.Me)
	}
}

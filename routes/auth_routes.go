package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modidiviyansh/customer-call-tracker-sub000/controllers"
	"github.com/modidiviyansh/customer-call-tracker-sub000/middleware"
)

// RegisterAuthRoutes 注册认证相关路由
func RegisterAuthRoutes(router *gin.Engine) {
	authRoutes := router.Group("/api/auth")

	authRoutes.POST("/login", controllers.Login)
	authRoutes.GET("/verify", middleware.AuthMiddleware(), controllers.Verify)
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modidiviyansh/customer-call-tracker-sub000/controllers"
	"github.com/modidiviyansh/customer-call-tracker-sub000/middleware"
)

// RegisterReminderRoutes 注册提醒相关路由
func RegisterReminderRoutes(router *gin.Engine) {
	reminderRoutes := router.Group("/api/reminders")
	reminderRoutes.Use(middleware.AuthMiddleware())

	reminderRoutes.GET("/", controllers.GetReminders)
}

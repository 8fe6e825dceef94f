package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modidiviyansh/customer-call-tracker-sub000/controllers"
	"github.com/modidiviyansh/customer-call-tracker-sub000/middleware"
)

// RegisterImportRoutes 注册批量导入相关路由
func RegisterImportRoutes(router *gin.Engine) {
	importRoutes := router.Group("/api/import")
	importRoutes.Use(middleware.AuthMiddleware())

	importRoutes.POST("/customers", controllers.ImportCustomers)
	importRoutes.POST("/reminders", controllers.ImportReminders)
}

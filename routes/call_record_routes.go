package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modidiviyansh/customer-call-tracker-sub000/controllers"
	"github.com/modidiviyansh/customer-call-tracker-sub000/middleware"
)

// RegisterCallRecordRoutes 注册通话记录相关路由
func RegisterCallRecordRoutes(router *gin.Engine) {
	recordRoutes := router.Group("/api/call-records")
	recordRoutes.Use(middleware.AuthMiddleware())

	recordRoutes.POST("/", controllers.CreateCallRecord)
	recordRoutes.PUT("/:id", controllers.UpdateCallRecord)

	customerRecordRoutes := router.Group("/api/customers/:id/call-records")
	customerRecordRoutes.Use(middleware.AuthMiddleware())
	customerRecordRoutes.GET("/", controllers.GetCustomerCallRecords)
}

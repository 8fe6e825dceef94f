package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modidiviyansh/customer-call-tracker-sub000/controllers"
	"github.com/modidiviyansh/customer-call-tracker-sub000/middleware"
)

// RegisterCustomerRoutes 注册客户相关路由
func RegisterCustomerRoutes(router *gin.Engine) {
	customerRoutes := router.Group("/api/customers")
	customerRoutes.Use(middleware.AuthMiddleware())

	customerRoutes.GET("/", controllers.GetCustomerList)
	customerRoutes.POST("/check-duplicates", controllers.CheckDuplicateCustomers)
	customerRoutes.POST("/", controllers.CreateCustomer)
	customerRoutes.GET("/:id", controllers.GetCustomerDetail)
	customerRoutes.GET("/:id/call-link", controllers.GetCustomerCallLink)
	customerRoutes.PUT("/:id", controllers.UpdateCustomer)
	customerRoutes.DELETE("/:id", controllers.DeleteCustomer)
}

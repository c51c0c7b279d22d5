package routes

import (
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/controllers"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/middleware"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/gin-gonic/gin"
)

// RegisterOrderRoutes wires the authenticated order endpoints. The group is
// expected to already carry the auth middleware; role guards are applied
// per route.
func RegisterOrderRoutes(rg *gin.RouterGroup, oc *controllers.OrderController) {
	rg.GET("", oc.GetOrders)
	rg.GET("/:id", oc.GetOrder)
	rg.POST("/payment-sheet/:cartId", oc.PaymentSheet)
	rg.POST("/cash/:cartId", oc.CreateCashOrder)

	rg.POST("/:id/paid", middleware.RequireRole(models.RoleAdmin), oc.MarkPaid)
	rg.POST("/:id/delivered", middleware.RequireRole(models.RoleVendor), oc.MarkDelivered)
}

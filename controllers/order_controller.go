package controllers

import (
	"net/http"
	"strconv"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/middleware"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/models"
	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type OrderController struct {
	Orders *services.OrderService
	Status *services.OrderStatusService
	Cache  *CacheManager
	Logger *zap.Logger
}

type checkoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
}

// GetOrders lists orders, user-scoped for non-admins.
func (oc *OrderController) GetOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role := middleware.GetUserRole(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	scope := userID.Hex()
	if role == models.RoleAdmin {
		scope = "all"
	}

	if cached, hit := oc.Cache.GetOrderList(c.Request.Context(), scope, page, limit); hit {
		c.JSON(http.StatusOK, gin.H{"data": cached})
		return
	}

	resp, err := oc.Orders.GetOrders(c.Request.Context(), userID, role, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	oc.Cache.SetOrderListAsync(scope, page, limit, resp)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetOrder fetches a single order.
func (oc *OrderController) GetOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), orderID, userID, middleware.GetUserRole(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

// CreateCashOrder converts a cart into a cash-on-delivery order.
func (oc *OrderController) CreateCashOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cartID, err := primitive.ObjectIDFromHex(c.Param("cartId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart id"})
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := oc.Orders.CreateCashOrder(c.Request.Context(), userID, cartID, req.ShippingAddress)
	if err != nil {
		_ = c.Error(err)
		return
	}

	oc.Cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"data": order})
}

// PaymentSheet prepares a card payment for the mobile app. No order exists
// until the gateway confirms the charge via webhook.
func (oc *OrderController) PaymentSheet(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cartID, err := primitive.ObjectIDFromHex(c.Param("cartId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart id"})
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &models.User{ID: userID, Email: middleware.GetUserEmail(c)}
	sheet, err := oc.Orders.CreatePaymentSheet(c.Request.Context(), user, cartID, req.ShippingAddress)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sheet})
}

// MarkPaid updates an order's paid status. Admin only.
func (oc *OrderController) MarkPaid(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := oc.Status.MarkPaid(c.Request.Context(), orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	oc.Cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "order paid successfully", "data": order})
}

// MarkDelivered updates an order's delivered status and pays out the
// sellers. Vendor only.
func (oc *OrderController) MarkDelivered(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := oc.Status.MarkDelivered(c.Request.Context(), orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	oc.Cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "order delivered successfully", "data": order})
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/partspoint/autoparts-backend/controllers"
	"github.com/partspoint/autoparts-backend/middleware"
)

func RegisterRoutes(
	r *gin.Engine,
	cart *controllers.CartController,
	orders *controllers.OrderController,
	payments *controllers.PaymentController,
	inventory *controllers.InventoryController,
) {
	cartRoutes := r.Group("/cart")
	cartRoutes.POST("/add", cart.AddItem)
	cartRoutes.POST("/update", cart.UpdateItem)
	cartRoutes.POST("/remove", cart.RemoveItem)
	cartRoutes.GET("/:session_id", cart.GetCart)

	orderRoutes := r.Group("/orders")
	orderRoutes.POST("", middleware.OptionalUser(), orders.CreateOrder)
	orderRoutes.GET("", orders.GetOrders)
	orderRoutes.GET("/me", middleware.AuthMiddleware(), orders.GetMyOrders)
	orderRoutes.GET("/:id", orders.GetOrderByID)
	orderRoutes.PUT("/:id/status", orders.UpdateStatus)

	paymentRoutes := r.Group("/payment")
	paymentRoutes.POST("/push", middleware.RateLimitMiddleware(), payments.InitiatePush)
	paymentRoutes.POST("/callback", payments.Callback)
	paymentRoutes.GET("/status/:order_id", payments.Status)

	stockRoutes := r.Group("/stock")
	stockRoutes.GET("/:product_id", inventory.GetStock)
	stockRoutes.PUT("/:product_id", inventory.SetStock)
}

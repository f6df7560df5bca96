package routes

import (
	"go-restaurant-ordering/controllers"

	"github.com/gin-gonic/gin"
)

func OrderRoutes(incomingRoutes gin.IRoutes, ctl *controllers.Controller) {
	incomingRoutes.GET("/", ctl.Index())
	incomingRoutes.GET("/api/state", ctl.State())
	incomingRoutes.POST("/cart/add", ctl.AddItem())
	incomingRoutes.POST("/cart/quantity", ctl.ChangeQuantity())
	incomingRoutes.POST("/order/fields", ctl.UpdateFields())
	incomingRoutes.POST("/order/submit", ctl.Submit())
	incomingRoutes.POST("/order/new", ctl.NewOrder())
}

package routes

import (
	"go-restaurant-ordering/controllers"

	"github.com/gin-gonic/gin"
)

func HistoryRoutes(incomingRoutes gin.IRoutes, ctl *controllers.Controller) {
	incomingRoutes.POST("/history/open", ctl.OpenHistory())
	incomingRoutes.POST("/history/back", ctl.BackToOrder())
	incomingRoutes.POST("/history/search", ctl.SearchHistory())
}

package routes

import (
	"go-restaurant-ordering/controllers"

	"github.com/gin-gonic/gin"
)

// SessionRoutes are the per-visitor side channels: identity reports, share
// results and the notification feed.
func SessionRoutes(incomingRoutes gin.IRoutes, ctl *controllers.Controller) {
	incomingRoutes.POST("/identity", ctl.ReportIdentity())
	incomingRoutes.POST("/success/copy", ctl.CopyResult())
	incomingRoutes.POST("/notification/dismiss", ctl.DismissNotification())
	incomingRoutes.GET("/ws", ctl.HandleWebSocket())
}

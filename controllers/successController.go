package controllers

import (
	"github.com/gin-gonic/gin"

	"go-restaurant-ordering/middleware"
)

type copyInput struct {
	OK     bool   `form:"ok" json:"ok"`
	Detail string `form:"detail" json:"detail"`
}

// CopyResult takes the browser's report of copying the share text.
func (ctl *Controller) CopyResult() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		var in copyInput
		_ = c.ShouldBind(&in)
		s.CopyResult(c.Request.Context(), in.OK, in.Detail)
		ctl.respond(c, s, "share_copy", nil)
	}
}

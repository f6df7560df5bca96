package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-restaurant-ordering/middleware"
	"go-restaurant-ordering/session"
)

// ReportIdentity receives the LIFF bootstrap result from the page.
func (ctl *Controller) ReportIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		var report session.IdentityReport
		if err := c.ShouldBindJSON(&report); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := s.ApplyIdentity(operationContext(c), report)
		c.JSON(statusFor(err), ctl.state(s, err))
	}
}

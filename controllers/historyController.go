package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"go-restaurant-ordering/apperr"
	"go-restaurant-ordering/middleware"
	"go-restaurant-ordering/session"
)

func (ctl *Controller) OpenHistory() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		saveCarriedFields(c, s)
		ctl.respond(c, s, "history_open", s.OpenHistory())
	}
}

func (ctl *Controller) BackToOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		ctl.respond(c, s, "history_back", s.BackToOrder())
	}
}

func (ctl *Controller) SearchHistory() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		var in session.HistorySearch
		if err := c.ShouldBind(&in); err != nil {
			ctl.respond(c, s, "history_query", fmt.Errorf("%w: %v", apperr.ErrValidation, err))
			return
		}
		ctl.respond(c, s, "history_query", s.SearchHistory(operationContext(c), in))
	}
}

package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"go-restaurant-ordering/apperr"
	"go-restaurant-ordering/middleware"
	"go-restaurant-ordering/session"
)

type cartInput struct {
	Name  string `form:"name" json:"name"`
	Delta int    `form:"delta" json:"delta"`
}

// Index renders whichever view the session is on.
func (ctl *Controller) Index() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		c.HTML(http.StatusOK, "index.html", ctl.page(s))
	}
}

// State is the JSON form of Index.
func (ctl *Controller) State() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		c.JSON(http.StatusOK, ctl.state(s, nil))
	}
}

func (ctl *Controller) AddItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		var in cartInput
		if err := c.ShouldBind(&in); err != nil {
			ctl.respond(c, s, "cart_add", fmt.Errorf("%w: %v", apperr.ErrValidation, err))
			return
		}
		saveCarriedFields(c, s)
		var err error
		if !s.AddItem(in.Name) {
			err = fmt.Errorf("add %q: %w", in.Name, apperr.ErrValidation)
		}
		ctl.respond(c, s, "cart_add", err)
	}
}

func (ctl *Controller) ChangeQuantity() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		var in cartInput
		if err := c.ShouldBind(&in); err != nil {
			ctl.respond(c, s, "cart_quantity", fmt.Errorf("%w: %v", apperr.ErrValidation, err))
			return
		}
		saveCarriedFields(c, s)
		s.ChangeQuantity(in.Name, in.Delta)
		ctl.respond(c, s, "cart_quantity", nil)
	}
}

// UpdateFields saves the order form without submitting it.
func (ctl *Controller) UpdateFields() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		var form session.OrderForm
		if err := c.ShouldBind(&form); err != nil {
			ctl.respond(c, s, "order_fields", fmt.Errorf("%w: %v", apperr.ErrValidation, err))
			return
		}
		s.UpdateForm(form)
		ctl.respond(c, s, "order_fields", nil)
	}
}

// Submit saves any posted form fields and then submits the order.
func (ctl *Controller) Submit() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		if hasForm(c) {
			var form session.OrderForm
			if err := c.ShouldBind(&form); err == nil {
				s.UpdateForm(form)
			}
		}
		err := s.Submit(operationContext(c))
		ctl.respond(c, s, "submit_order", err)
	}
}

func (ctl *Controller) NewOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		ctl.respond(c, s, "new_order", s.NewOrder())
	}
}

// saveCarriedFields keeps what the visitor typed when a cart or history
// button posts the order form along with its own action.
func saveCarriedFields(c *gin.Context, s *session.Session) {
	if _, ok := c.GetPostForm("customerPhone"); !ok {
		return
	}
	var form session.OrderForm
	if err := c.ShouldBindWith(&form, binding.Form); err == nil {
		s.UpdateForm(form)
	}
}

func hasForm(c *gin.Context) bool {
	return c.Request.ContentLength > 0 || len(c.Request.TransferEncoding) > 0
}

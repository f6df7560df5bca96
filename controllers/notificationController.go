package controllers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"go-restaurant-ordering/middleware"
	"go-restaurant-ordering/models"
)

const writeWait = 10 * time.Second

// Message is one websocket frame.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func (ctl *Controller) DismissNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		s.DismissNotification()
		ctl.respond(c, s, "notification_dismiss", nil)
	}
}

// HandleWebSocket streams the session's notification banner. The current
// banner is sent on connect, then every change.
func (ctl *Controller) HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.CurrentSession(c)
		conn, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			ctl.log.LogAttrs(c.Request.Context(), slog.LevelWarn, "websocket upgrade failed",
				slog.String("action", "ws_upgrade"),
				slog.String("session_id", s.ID),
				slog.String("error", err.Error()),
			)
			return
		}
		defer conn.Close()

		updates, cancel := s.Notifier().Subscribe()
		defer cancel()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		send := func(n models.Notification) bool {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			return conn.WriteJSON(Message{Event: "notification", Payload: n}) == nil
		}
		if !send(s.Notifier().Current()) {
			return
		}
		for {
			select {
			case <-closed:
				return
			case n := <-updates:
				if !send(n) {
					return
				}
			}
		}
	}
}

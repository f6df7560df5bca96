package controllers

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"go-restaurant-ordering/apperr"
	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/middleware"
	"go-restaurant-ordering/models"
	"go-restaurant-ordering/session"
)

// Controller serves the ordering pages for the session attached by
// middleware.Session.
type Controller struct {
	shop      helpers.ShopInfo
	validator *helpers.FormValidator
	store     *session.Store
	liffID    string
	log       *slog.Logger
	upgrader  websocket.Upgrader
}

type Options struct {
	Shop           helpers.ShopInfo
	Validator      *helpers.FormValidator
	Store          *session.Store
	LiffID         string
	AllowedOrigins []string
	Log            *slog.Logger
}

func New(opts Options) *Controller {
	return &Controller{
		shop:      opts.Shop,
		validator: opts.Validator,
		store:     opts.Store,
		liffID:    opts.LiffID,
		log:       opts.Log,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(opts.AllowedOrigins),
		},
	}
}

// TemplateFuncs are the helpers the page templates call.
func (ctl *Controller) TemplateFuncs() template.FuncMap {
	loc := ctl.validator.Location()
	return template.FuncMap{
		"displayTime":  func(v string) string { return helpers.FormatDisplayTime(v, loc) },
		"itemsSummary": helpers.FormatOrderItems,
	}
}

type pageData struct {
	session.Snapshot
	Shop          helpers.ShopInfo
	QuickAdd      models.Catalog
	LiffID        string
	NeedsIdentity bool
	PickupMin     string
	PickupMax     string
	ShareText     string
	ShareURL      string
}

func (ctl *Controller) page(s *session.Session) pageData {
	snap := s.Snapshot()
	data := pageData{
		Snapshot:      snap,
		Shop:          ctl.shop,
		QuickAdd:      snap.Menu.QuickAdd(),
		LiffID:        ctl.liffID,
		NeedsIdentity: snap.Identity.Status == session.StatusInitializing || snap.Identity.Status == session.StatusLoggingIn,
	}
	data.PickupMin, data.PickupMax = ctl.validator.PickupBounds()
	if snap.Confirmed != nil {
		data.ShareText = helpers.ShareText(*snap.Confirmed, ctl.shop, ctl.validator.Location())
		data.ShareURL = helpers.ShareURL(data.ShareText)
	}
	return data
}

type stateResponse struct {
	session.Snapshot
	ShareText string `json:"shareText,omitempty"`
	ShareURL  string `json:"shareUrl,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (ctl *Controller) state(s *session.Session, err error) stateResponse {
	p := ctl.page(s)
	resp := stateResponse{Snapshot: p.Snapshot, ShareText: p.ShareText, ShareURL: p.ShareURL}
	if err != nil && !errors.Is(err, apperr.ErrIdentityUnavailable) {
		resp.Error = apperr.Kind(err)
	}
	return resp
}

// respond finishes a state-changing request: JSON clients get the new state,
// browsers are sent back to the page.
func (ctl *Controller) respond(c *gin.Context, s *session.Session, action string, err error) {
	if err != nil {
		ctl.log.LogAttrs(c.Request.Context(), slog.LevelDebug, "action rejected",
			slog.String("action", action),
			slog.String("session_id", s.ID),
			slog.String("request_id", middleware.RequestID(c)),
			slog.String("kind", apperr.Kind(err)),
		)
	}
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(statusFor(err), ctl.state(s, err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func statusFor(err error) int {
	if err == nil || errors.Is(err, apperr.ErrIdentityUnavailable) {
		return http.StatusOK
	}
	switch apperr.Kind(err) {
	case "validation", "empty_cart":
		return http.StatusUnprocessableEntity
	case "busy", "invalid_transition":
		return http.StatusConflict
	case "backend_rejected", "transport":
		return http.StatusBadGateway
	case "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// operationContext outlives the visitor's connection: once a submission or
// query has started it runs to completion under the client timeouts.
func operationContext(c *gin.Context) context.Context {
	ctx := context.WithoutCancel(c.Request.Context())
	return session.WithRequestID(ctx, middleware.RequestID(c))
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

// Health reports liveness and the number of live sessions.
func (ctl *Controller) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": ctl.store.Len(), "time": time.Now().UTC()})
	}
}

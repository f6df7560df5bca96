package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-restaurant-ordering/controllers"
	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/middleware"
	"go-restaurant-ordering/session"
	"go-restaurant-ordering/templates"
)

type Config struct {
	Controller     *controllers.Controller
	Store          *session.Store
	Signer         *helpers.TokenSigner
	AllowedOrigins []string
	Log            *slog.Logger
}

// NewRouter builds the engine with every route registered.
func NewRouter(cfg Config) (*gin.Engine, error) {
	tmpl, err := templates.Load(cfg.Controller.TemplateFuncs())
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(cfg.Log))

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.TokenHeader, middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "X-Session-Token", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.SetHTMLTemplate(tmpl)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	router.GET("/healthz", cfg.Controller.Health())

	// Only matched routes get a session; stray paths must not mint one.
	sessioned := router.Group("", middleware.Session(cfg.Store, cfg.Signer, cfg.Log))
	OrderRoutes(sessioned, cfg.Controller)
	HistoryRoutes(sessioned, cfg.Controller)
	SessionRoutes(sessioned, cfg.Controller)

	return router, nil
}

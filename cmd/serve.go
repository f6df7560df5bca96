package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucsky/cuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go-restaurant-ordering/backend"
	"go-restaurant-ordering/config"
	"go-restaurant-ordering/controllers"
	"go-restaurant-ordering/database"
	"go-restaurant-ordering/diagnostics"
	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/identity"
	"go-restaurant-ordering/logger"
	"go-restaurant-ordering/models"
	"go-restaurant-ordering/routes"
	"go-restaurant-ordering/session"
)

const (
	serviceName      = "restaurant-ordering"
	janitorInterval  = time.Minute
	shutdownTimeout  = 10 * time.Second
	mongoDialTimeout = 10 * time.Second
	journalTimeout   = 5 * time.Second
)

var portFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ordering web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile, cfgFile)
		if err != nil {
			return err
		}
		if portFlag != "" {
			cfg.Port = portFlag
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, os.Stdout)
	},
}

func init() {
	serveCmd.Flags().StringVar(&portFlag, "port", "", "listen port (overrides PORT)")
}

type app struct {
	router  *gin.Engine
	store   *session.Store
	log     *slog.Logger
	cleanup func()
}

// newApp wires every component from cfg.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	log := logger.New(serviceName, cfg.LogLevel, logOut)
	if logger.ParseLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	journal, cleanup := openJournal(ctx, cfg, log)
	validator := helpers.NewFormValidator(cfg.Location, nil)
	deps := &session.Deps{
		Catalog:      models.DefaultCatalog(),
		Validator:    validator,
		Backend:      backend.NewClient(cfg.APIEndpoint, cfg.APIKey, cfg.BackendTimeout),
		Identity:     identity.NewLINE(cfg.LiffID, cfg.LineChannelAccessToken, cfg.BackendTimeout),
		Journal:      journal,
		Log:          log,
		DeliveryFee:  cfg.DeliveryFee,
		NewRequestID: cuid.New,
	}
	store := session.NewStore(deps, cfg.SessionTTL)
	ctl := controllers.New(controllers.Options{
		Shop:           helpers.DefaultShop,
		Validator:      validator,
		Store:          store,
		LiffID:         cfg.LiffID,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})
	router, err := routes.NewRouter(routes.Config{
		Controller:     ctl,
		Store:          store,
		Signer:         helpers.NewTokenSigner(cfg.SecretKey, cfg.SessionTTL),
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})
	if err != nil {
		cleanup()
		return nil, err
	}
	return &app{router: router, store: store, log: log, cleanup: cleanup}, nil
}

// openJournal uses MongoDB when configured and reachable, and the log
// otherwise.
func openJournal(ctx context.Context, cfg *config.Config, log *slog.Logger) (diagnostics.Recorder, func()) {
	if cfg.MongoDBURL == "" {
		return diagnostics.NewLogRecorder(log), func() {}
	}
	client, err := database.Connect(ctx, cfg.MongoDBURL, mongoDialTimeout)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelWarn, "diagnostics journal unavailable, logging only",
			slog.String("action", "journal_connect"),
			slog.String("error", err.Error()),
		)
		return diagnostics.NewLogRecorder(log), func() {}
	}
	coll := database.OpenCollection(client, cfg.MongoDBDatabase, "diagnostics")
	return diagnostics.NewMongoRecorder(coll, log, journalTimeout), func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
}

func serve(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	a, err := newApp(ctx, cfg, logOut)
	if err != nil {
		return err
	}
	defer a.cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.LogAttrs(gctx, slog.LevelInfo, "listening",
			slog.String("action", "server_start"),
			slog.String("addr", srv.Addr),
			slog.Bool("line_enabled", cfg.LiffID != ""),
			slog.Bool("journal_mongo", cfg.MongoDBURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.store.RunJanitor(gctx, janitorInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.LogAttrs(shutdownCtx, slog.LevelInfo, "shutting down", slog.String("action", "server_stop"))
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/storefront-api/analytics"
	"github.com/junaidrashid-git/storefront-api/cart"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/checkout"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/media"
	"github.com/junaidrashid-git/storefront-api/messaging"
	"github.com/junaidrashid-git/storefront-api/metrics"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/orders"
	"github.com/junaidrashid-git/storefront-api/realtime"
	"github.com/junaidrashid-git/storefront-api/routes"
	"github.com/junaidrashid-git/storefront-api/search"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "fashion storefront API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP server",
				Action: func(c *cli.Context) error { return withRuntime(c.Context, serve) },
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: func(c *cli.Context) error { return withRuntime(c.Context, migrate) },
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func withRuntime(ctx context.Context, fn func(context.Context, runtime) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	defer func() { _ = log.Sync() }()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return errors.Wrap(err, "connect database")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, runtime{cfg: cfg, logger: log, db: db})
}

func migrate(_ context.Context, rt runtime) error {
	if err := models.AutoMigrate(rt.db); err != nil {
		return errors.Wrap(err, "auto-migrate")
	}
	rt.logger.Info("schema is up to date")
	return nil
}

func serve(ctx context.Context, rt runtime) error {
	cfg, log := rt.cfg, rt.logger

	if err := models.AutoMigrate(rt.db); err != nil {
		return errors.Wrap(err, "auto-migrate")
	}

	collector := metrics.NewCollector("storefront")
	hub := realtime.NewHub(log)

	dispatchers := cart.MultiDispatcher{hub, collector}
	if cfg.AMQPURL != "" {
		publisher, err := messaging.NewPublisher(messaging.Config{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			MaxRetries: 5,
		}, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		dispatchers = append(dispatchers, publisher)
	}

	repo := catalog.NewRepository(rt.db)
	var (
		source catalog.Source        = repo
		finder catalog.ProductFinder = repo
	)
	switch {
	case cfg.CatalogBackend == config.CatalogSupabase:
		supa, err := catalog.NewSupabaseSource(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return err
		}
		source, finder = supa, supa
		if cfg.SearchRecall == config.RecallClient {
			source = catalog.NewFallbackSource(supa, cfg.SearchCandidateLimit)
		}
	case cfg.SearchRecall == config.RecallClient:
		source = catalog.NewFallbackSource(repo, cfg.SearchCandidateLimit)
	}

	engine := search.NewEngine(source, log,
		search.WithObserver(collector),
		search.WithMaxResults(cfg.SearchResultLimit),
		search.WithCandidateLimit(cfg.SearchCandidateLimit),
	)

	carts := cart.NewRegistry(cart.NewGormPersister(rt.db), dispatchers, log, cart.WithCapacity(cfg.CartCacheSize))
	orderRepo := orders.NewRepository(rt.db)
	gateway := checkout.NewPaystackClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, log)
	payments := checkout.NewService(carts, orderRepo, gateway, dispatchers, collector, log, checkout.Config{
		Currency:    cfg.Currency,
		CallbackURL: cfg.PaystackCallbackURL,
		PublicKey:   cfg.PaystackPublicKey,
	})

	library := media.NewLibrary(cfg.UploadsDir, cfg.PublicBaseURL, media.NewGormAssets(rt.db), log)
	backup := media.NewBackup(cfg.UploadsDir, cfg.BackupDir, cfg.BackupRetention, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), collector.Middleware())
	r.MaxMultipartMemory = 32 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/uploads", cfg.UploadsDir)

	routes.SetupRoutes(r, routes.Dependencies{
		DB:            rt.db,
		Config:        cfg,
		Logger:        log,
		Search:        engine,
		SearchTracker: search.NewTracker(),
		Products:      repo,
		Finder:        finder,
		Carts:         carts,
		Hub:           hub,
		Checkout:      payments,
		Orders:        orderRepo,
		Dashboards:    analytics.NewService(orderRepo),
		Media:         library,
		Metrics:       collector,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("catalog", cfg.CatalogBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		return backup.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

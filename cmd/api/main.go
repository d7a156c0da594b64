package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/atino-shop/atino-backend/api/routes"
	authsvc "github.com/atino-shop/atino-backend/internal/auth"
	blogsvc "github.com/atino-shop/atino-backend/internal/blog"
	cartsvc "github.com/atino-shop/atino-backend/internal/cart"
	checkoutsvc "github.com/atino-shop/atino-backend/internal/checkout"
	commentsvc "github.com/atino-shop/atino-backend/internal/comments"
	ordersvc "github.com/atino-shop/atino-backend/internal/orders"
	productsvc "github.com/atino-shop/atino-backend/internal/products"
	usersvc "github.com/atino-shop/atino-backend/internal/users"
	wishlistsvc "github.com/atino-shop/atino-backend/internal/wishlist"
	"github.com/atino-shop/atino-backend/pkg/auth/session"
	"github.com/atino-shop/atino-backend/pkg/config"
	"github.com/atino-shop/atino-backend/pkg/db"
	"github.com/atino-shop/atino-backend/pkg/logger"
	"github.com/atino-shop/atino-backend/pkg/metrics"
	"github.com/atino-shop/atino-backend/pkg/migrate"
	pkgredis "github.com/atino-shop/atino-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server exited with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx := context.Background()

	dbClient, dbErr := db.New(ctx, cfg.DB, logg)
	if dbErr != nil {
		return dbErr
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if migrateErr := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); migrateErr != nil {
		return migrateErr
	}

	redisClient, redisErr := pkgredis.New(ctx, cfg.Redis, logg)
	if redisErr != nil {
		return redisErr
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessions, sessErr := session.NewManager(redisClient, cfg.JWT)
	if sessErr != nil {
		return sessErr
	}

	conn := dbClient.DB()
	userRepo := usersvc.NewRepository(conn)
	productRepo := productsvc.NewRepository(conn)
	cartRepo := cartsvc.NewRepository(conn)
	orderRepo := ordersvc.NewRepository(conn)
	commentRepo := commentsvc.NewRepository(conn)
	wishlistRepo := wishlistsvc.NewRepository(conn)
	blogRepo := blogsvc.NewRepository(conn)

	authService, svcErr := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:  userRepo,
		Sessions:  sessions,
		Limiter:   redisClient,
		JWT:       cfg.JWT,
		Password:  cfg.Password,
		RateLimit: cfg.AuthRateLimit,
	})
	if svcErr != nil {
		return svcErr
	}

	productService, svcErr := productsvc.NewService(productsvc.ServiceParams{Repo: productRepo})
	if svcErr != nil {
		return svcErr
	}

	cartService, svcErr := cartsvc.NewService(cartsvc.ServiceParams{
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
	})
	if svcErr != nil {
		return svcErr
	}

	orderService, svcErr := ordersvc.NewService(ordersvc.ServiceParams{Repo: orderRepo})
	if svcErr != nil {
		return svcErr
	}

	checkoutService, svcErr := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		OrderRepo:   orderRepo,
		Tx:          dbClient,
		Pricing:     cfg.Checkout,
	})
	if svcErr != nil {
		return svcErr
	}

	commentService, svcErr := commentsvc.NewService(commentsvc.ServiceParams{
		CommentRepo: commentRepo,
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
	})
	if svcErr != nil {
		return svcErr
	}

	wishlistService, svcErr := wishlistsvc.NewService(wishlistsvc.ServiceParams{
		WishlistRepo: wishlistRepo,
		ProductRepo:  productRepo,
	})
	if svcErr != nil {
		return svcErr
	}

	blogService, svcErr := blogsvc.NewService(blogsvc.ServiceParams{BlogRepo: blogRepo})
	if svcErr != nil {
		return svcErr
	}

	userService, svcErr := usersvc.NewService(usersvc.ServiceParams{
		UserRepo:       userRepo,
		OrderRepo:      orderRepo,
		RootAdminEmail: cfg.App.RootAdminEmail,
	})
	if svcErr != nil {
		return svcErr
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	router := routes.NewRouter(routes.Deps{
		Cfg:    cfg,
		Logg:   logg,
		DB:     dbClient,
		Redis:  redisClient,
		HTTP:   httpMetrics,
		Prom:   prometheus.DefaultGatherer,
		Verify: sessions,

		Auth:     authService,
		Products: productService,
		Cart:     cartService,
		Checkout: checkoutService,
		Orders:   orderService,
		Comments: commentService,
		Wishlist: wishlistService,
		Blog:     blogService,
		Users:    userService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	startCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(startCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			err = multierr.Append(err, shutdownErr)
		}
		if listenErr := <-serveErr; listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			err = multierr.Append(err, listenErr)
		}

	case listenErr := <-serveErr:
		if listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			err = multierr.Append(err, listenErr)
		}
	}

	return err
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakery-shop/internal/config"
	"bakery-shop/internal/db"
	"bakery-shop/internal/httpserver"
	cartrepo "bakery-shop/internal/repository/cart"
	categoryrepo "bakery-shop/internal/repository/category"
	customerrepo "bakery-shop/internal/repository/customer"
	productrepo "bakery-shop/internal/repository/product"
	tokenrepo "bakery-shop/internal/repository/token"
	anonymoussvc "bakery-shop/internal/service/anonymous"
	cartsvc "bakery-shop/internal/service/cart"
	categorysvc "bakery-shop/internal/service/category"
	customersvc "bakery-shop/internal/service/customer"
	productsvc "bakery-shop/internal/service/product"
	"golang.org/x/sync/errgroup"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: cfg.DBMaxConns}, logger)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo, logger)
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool, logger), productRepo, logger, cfg.StoreCurrency.String())
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))
	customerService := customersvc.New(customerrepo.NewPostgres(dbpool, logger), tokenrepo.NewPostgres(dbpool, logger), cfg.AccessTokenTTL)
	sessionService := anonymoussvc.New(cfg.SessionTTL)

	if n, err := customerService.PurgeExpiredTokens(ctx); err != nil {
		logger.Printf("purge expired tokens: %v", err)
	} else if n > 0 {
		logger.Printf("purged %d expired tokens", n)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:  productService,
		CategorySvc: categoryService,
		CustomerSvc: customerService,
		CartSvc:     cartService,
		SessionSvc:  sessionService,
	}, httpserver.Options{
		SessionCookie:  cfg.SessionCookie,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("starting api addr=%s currency=%s", cfg.HTTPAddr, cfg.StoreCurrency)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessionService.SweepEvery(gctx, sessionSweepInterval)
		return nil
	})
	g.Go(func() error {
		defer stop()
		return srv.Run(gctx, cfg.ShutdownTimeout)
	})
	if err := g.Wait(); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}

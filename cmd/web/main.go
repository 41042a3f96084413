package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arunkumar2k5/clapclient/internal/auth"
	"github.com/arunkumar2k5/clapclient/internal/catalog"
	"github.com/arunkumar2k5/clapclient/internal/compare"
	"github.com/arunkumar2k5/clapclient/internal/config"
	"github.com/arunkumar2k5/clapclient/internal/genclient"
	"github.com/arunkumar2k5/clapclient/internal/observability"
	"github.com/arunkumar2k5/clapclient/pkg/database"
)

func main() {
	cfg := config.Load()

	dbCfg := database.DefaultConfig()
	if cfg.DBPath != "" {
		dbCfg = database.Config{Path: cfg.DBPath}
	}
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	observability.Start(cfg.MetricsPort)

	router := gin.Default()

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	// Auth
	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Duration: cfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Catalog is optional: without credentials the app still compares
	// via the generation service, it just has no spec table.
	var fetcher catalog.Fetcher
	client, err := catalog.NewClient(cfg.CatalogClientID, cfg.CatalogClientSecret, cfg.CatalogAuthURL, cfg.CatalogSearchURL)
	if err != nil {
		log.Printf("[web] catalog disabled: %v", err)
	} else {
		fetcher = client
	}

	service := &compare.Service{
		Catalog:     fetcher,
		Gen:         genclient.New(cfg.GenServerURL),
		Model:       cfg.GenModel,
		Temperature: cfg.GenTemperature,
	}
	store := compare.NewStore(db)

	// Compare routes (protected)
	protected := router.Group("/api")
	protected.Use(auth.AuthMiddleware(tokenSvc))
	compare.NewHandler(service, store).RegisterRoutes(protected)

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
		})
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}

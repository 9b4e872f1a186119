package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"toshokan-backend/internal/library/books"
	"toshokan-backend/internal/library/exports"
	"toshokan-backend/internal/library/lendings"
	"toshokan-backend/internal/library/statistics"
	"toshokan-backend/internal/library/students"
	"toshokan-backend/internal/platform/auth"
	"toshokan-backend/internal/platform/db"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	// 動作モード取得
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.Path)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	secret := []byte(cfg.Auth.Secret)
	authSvc := auth.NewService(conn, secret)

	// 初回起動時の管理者アカウント
	if err := authSvc.EnsureAdmin(context.Background(), cfg.Auth.AdminID, cfg.Auth.AdminPassword); err != nil {
		log.Fatalf("[ERROR] failed to seed admin account: %v", err)
	}

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)

	authed := api.Group("", auth.RequireAuth(secret))
	books.RegisterRoutes(authed, books.NewService(conn))
	students.RegisterRoutes(authed, students.NewService(conn))
	lendings.RegisterRoutes(authed, lendings.NewService(conn))
	statistics.RegisterRoutes(authed, statistics.NewService(conn))
	exports.RegisterRoutes(authed, exports.NewService(conn))

	admin := authed.Group("", auth.RequireAdmin())
	auth.RegisterAccountRoutes(admin, authSvc)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8443"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	certFile := cfg.Server.Certificate.Cert
	keyFile := cfg.Server.Certificate.Key

	go func() {
		var err error
		if certFile != "" && keyFile != "" {
			log.Printf("[INFO] listening on https://0.0.0.0%s", addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			// 証明書未設定なら平文で起動（ローカル利用前提）
			log.Printf("[INFO] listening on http://0.0.0.0%s", addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}

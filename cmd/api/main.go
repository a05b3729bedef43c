package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/api/handler"
	apimiddleware "github.com/calchukom/caldepaz-sub001/internal/api/middleware"
	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/config"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
	"github.com/calchukom/caldepaz-sub001/internal/infrastructure/postgres"
	redisinfra "github.com/calchukom/caldepaz-sub001/internal/infrastructure/redis"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/logger"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/mailer"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/metrics"
	"github.com/calchukom/caldepaz-sub001/internal/worker"
)

func main() {
	// .env があれば読み込む（本番では環境変数を直接使う）
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.NewLogger(cfg.Server.Env)
	logger.Set(log)
	defer func() { _ = logger.Sync() }()

	m := metrics.Init()

	// PostgreSQL 接続とマイグレーション
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, "migrations"); err != nil {
		log.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis 接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	specRepo := postgres.NewSpecificationRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	maintenanceRepo := postgres.NewMaintenanceRepository(db)

	// Redis ベースのコンポーネント
	lockManager := redisinfra.NewLockManager(redisClient)
	blacklist := redisinfra.NewTokenBlacklist(redisClient)
	inviteStore := redisinfra.NewInviteStore(redisClient)
	fleetCache := redisinfra.NewFleetCache(redisClient)

	// メール送信
	var mail mailer.Mailer
	if cfg.Mail.SendGridAPIKey != "" {
		mail = mailer.NewSendGridMailer(&cfg.Mail)
	} else {
		mail = mailer.NopMailer{}
	}

	// アプリケーションサービス
	statusSync := application.NewStatusSynchronizer(txManager, vehicleRepo, bookingRepo, maintenanceRepo, fleetCache)
	authService := application.NewAuthService(userRepo, blacklist, inviteStore, mail, &cfg.Auth)
	userService := application.NewUserService(userRepo)
	vehicleService := application.NewVehicleService(vehicleRepo, specRepo, statusSync, fleetCache)
	locationService := application.NewLocationService(locationRepo, bookingRepo)
	bookingService := application.NewBookingService(txManager, bookingRepo, vehicleRepo, userRepo, statusSync, lockManager, mail, m)
	paymentService := application.NewPaymentService(txManager, paymentRepo, bookingRepo, m)
	ticketService := application.NewTicketService(ticketRepo, userRepo)
	maintenanceService := application.NewMaintenanceService(maintenanceRepo, vehicleRepo, statusSync)

	// ハンドラー
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	specHandler := handler.NewSpecificationHandler(vehicleService)
	locationHandler := handler.NewLocationHandler(locationService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler()
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	registerRoutes(e, authService, authHandler, userHandler, vehicleHandler, specHandler,
		locationHandler, bookingHandler, paymentHandler, ticketHandler, maintenanceHandler, healthHandler)

	// バックグラウンドワーカー
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleaner := worker.NewOverdueBookingCleaner(bookingService, 1*time.Minute)
	go cleaner.Start(ctx)

	scheduler := worker.NewScheduler(bookingService, statusSync)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("スケジューラーの起動に失敗", zap.Error(err))
	}

	// サーバー起動
	go func() {
		addr := ":" + cfg.Server.Port
		log.Info("サーバー起動", zap.String("addr", addr), zap.String("env", cfg.Server.Env))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています")

	cancel()
	cleaner.Stop()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	log.Info("サーバーが正常にシャットダウンしました")
}

func registerRoutes(
	e *echo.Echo,
	authService *application.AuthService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	vehicleHandler *handler.VehicleHandler,
	specHandler *handler.SpecificationHandler,
	locationHandler *handler.LocationHandler,
	bookingHandler *handler.BookingHandler,
	paymentHandler *handler.PaymentHandler,
	ticketHandler *handler.TicketHandler,
	maintenanceHandler *handler.MaintenanceHandler,
	healthHandler *handler.HealthHandler,
) {
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")

	// 認証不要
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// 認証必須
	authed := v1.Group("", apimiddleware.RequireAuth(authService))
	adminOnly := apimiddleware.RequireRole(user.RoleAdmin)
	agentOrAdmin := apimiddleware.RequireRole(user.RoleAdmin, user.RoleSupportAgent)

	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/invites", authHandler.IssueInvite, adminOnly)

	authed.GET("/users/me", userHandler.Me)
	authed.PATCH("/users/me", userHandler.UpdateMe)
	authed.GET("/users", userHandler.List, adminOnly)
	authed.GET("/users/:id", userHandler.GetByID, adminOnly)

	v1.GET("/specifications", specHandler.List)
	v1.GET("/specifications/:id", specHandler.GetByID)
	authed.POST("/specifications", specHandler.Create, adminOnly)

	v1.GET("/locations", locationHandler.List)
	v1.GET("/locations/:id", locationHandler.GetByID)
	authed.POST("/locations", locationHandler.Create, adminOnly)
	authed.DELETE("/locations/:id", locationHandler.Delete, adminOnly)

	v1.GET("/vehicles", vehicleHandler.List)
	v1.GET("/vehicles/:id", vehicleHandler.GetByID)
	v1.GET("/vehicles/available-count", vehicleHandler.AvailableCount)
	authed.POST("/vehicles", vehicleHandler.Create, adminOnly)
	authed.PATCH("/vehicles/:id", vehicleHandler.Update, adminOnly)
	authed.PUT("/vehicles/:id/status", vehicleHandler.SetStatus, adminOnly)
	authed.GET("/vehicles/:id/maintenance", maintenanceHandler.ListByVehicle)

	authed.POST("/bookings", bookingHandler.Create)
	authed.GET("/bookings", bookingHandler.ListMine)
	authed.GET("/bookings/:id", bookingHandler.GetByID)
	authed.POST("/bookings/:id/confirm", bookingHandler.Confirm, adminOnly)
	authed.POST("/bookings/:id/activate", bookingHandler.Activate, adminOnly)
	authed.POST("/bookings/:id/complete", bookingHandler.Complete, adminOnly)
	authed.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	authed.GET("/bookings/:id/payments", paymentHandler.ListByBooking)

	authed.POST("/payments", paymentHandler.Create)
	authed.GET("/payments/:id", paymentHandler.GetByID)
	authed.PUT("/payments/:id/status", paymentHandler.UpdateStatus, adminOnly)

	authed.POST("/tickets", ticketHandler.Create)
	authed.GET("/tickets", ticketHandler.List)
	authed.GET("/tickets/:id", ticketHandler.GetByID)
	authed.PUT("/tickets/:id/assign", ticketHandler.Assign, agentOrAdmin)
	authed.PUT("/tickets/:id/status", ticketHandler.UpdateStatus, agentOrAdmin)

	authed.POST("/maintenance", maintenanceHandler.Schedule, adminOnly)
	authed.GET("/maintenance/:id", maintenanceHandler.GetByID, agentOrAdmin)
	authed.POST("/maintenance/:id/start", maintenanceHandler.Start, adminOnly)
	authed.POST("/maintenance/:id/complete", maintenanceHandler.Complete, adminOnly)
	authed.POST("/maintenance/:id/cancel", maintenanceHandler.Cancel, adminOnly)
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"bcflats_backend/internal/config"
	"bcflats_backend/internal/handlers"
	"bcflats_backend/internal/jwtutil"
	"bcflats_backend/internal/logger"
	"bcflats_backend/internal/metrics"
	"bcflats_backend/internal/middleware"
	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.Server.Env); err != nil {
		panic(err)
	}
	log := logger.Get()
	defer log.Sync()

	db, err := services.InitDB(cfg.DB)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	var cache *services.RedisCache
	if cfg.RedisURL != "" {
		cache, err = services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, dashboard caching disabled", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	jwtManager := jwtutil.NewManager(cfg.JWT)

	notifications := services.NewNotificationService(db)
	billing := services.NewBillingService(db, notifications)
	payments := services.NewPaymentService(db, billing, notifications)
	tenants := services.NewTenantService(db, notifications)
	rooms := services.NewRoomService(db)
	accounts := services.NewAccountService(db, jwtManager)
	archives := services.NewArchiveService(db, billing, notifications)
	announcements := services.NewAnnouncementService(db, notifications)
	maintenance := services.NewMaintenanceService(db, notifications)
	dashboard := services.NewDashboardService(db, cache, billing, tenants, rooms, payments, archives)

	authHandler := handlers.NewAuthHandler(accounts)
	accountHandler := handlers.NewAccountHandler(accounts)
	tenantHandler := handlers.NewTenantHandler(tenants)
	roomHandler := handlers.NewRoomHandler(rooms)
	paymentHandler := handlers.NewPaymentHandler(payments, billing, tenants)
	archiveHandler := handlers.NewArchiveHandler(archives)
	notificationHandler := handlers.NewNotificationHandler(notifications)
	announcementHandler := handlers.NewAnnouncementHandler(announcements)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenance, tenants)
	dashboardHandler := handlers.NewDashboardHandler(dashboard)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.CustomErrorHandler

	e.Use(echomw.Recover())
	e.Use(logger.Middleware())
	e.Use(metrics.Middleware())
	e.Use(echomw.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api/v1")

	// Public
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Any authenticated account
	authed := api.Group("", middleware.RequireAuth(jwtManager))
	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/notifications", notificationHandler.List)
	authed.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	authed.POST("/notifications/:id/read", notificationHandler.MarkRead)
	authed.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	authed.GET("/announcements/feed", announcementHandler.Feed)

	// Tenant self-service
	tenantOnly := authed.Group("/me", middleware.RequireRole(models.RoleTenant))
	tenantOnly.GET("/tenancy", tenantHandler.Me)
	tenantOnly.GET("/billing", paymentHandler.OwnBillingInfo)
	tenantOnly.GET("/payments", paymentHandler.OwnHistory)
	tenantOnly.POST("/payments", paymentHandler.SubmitOwn)
	tenantOnly.GET("/maintenance", maintenanceHandler.ListOwn)
	tenantOnly.POST("/maintenance", maintenanceHandler.Create)

	// Accounting and above
	staff := authed.Group("", middleware.RequireRole(models.StaffRoles()...))
	staff.GET("/tenants", tenantHandler.List)
	staff.GET("/tenants/stats", tenantHandler.Stats)
	staff.GET("/tenants/:id", tenantHandler.Get)
	staff.GET("/tenants/:id/billing", paymentHandler.BillingInfo)
	staff.GET("/tenants/:id/billing/history", paymentHandler.BillingHistory)
	staff.GET("/tenants/:id/payments", paymentHandler.History)
	staff.POST("/tenants/:id/payments", paymentHandler.Process)
	staff.GET("/billing", paymentHandler.AllBillingInfo)
	staff.GET("/payments/recent", paymentHandler.Recent)
	staff.GET("/payments/stats", paymentHandler.Stats)
	staff.GET("/payments/:id", paymentHandler.Get)
	staff.POST("/payments/:id/confirm", paymentHandler.Confirm)
	staff.GET("/rooms", roomHandler.List)
	staff.GET("/rooms/available", roomHandler.Available)
	staff.GET("/rooms/stats", roomHandler.Stats)
	staff.GET("/rooms/:id", roomHandler.Get)
	staff.GET("/archives", archiveHandler.List)
	staff.GET("/archives/stats", archiveHandler.Stats)
	staff.GET("/archives/:id", archiveHandler.Get)
	staff.GET("/maintenance", maintenanceHandler.List)
	staff.GET("/maintenance/:id", maintenanceHandler.Get)
	staff.GET("/dashboard", dashboardHandler.Stats)

	// Admin and above
	admin := authed.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
	admin.POST("/tenants", tenantHandler.Create)
	admin.PUT("/tenants/:id", tenantHandler.Update)
	admin.POST("/tenants/:id/check-in", tenantHandler.CheckIn)
	admin.PUT("/tenants/:id/status", tenantHandler.UpdateStatus)
	admin.DELETE("/tenants/:id", tenantHandler.Delete)
	admin.POST("/tenants/:id/check-out", archiveHandler.CheckOut)
	admin.POST("/archives/:id/restore", archiveHandler.Restore)
	admin.POST("/rooms", roomHandler.Create)
	admin.PUT("/rooms/:id", roomHandler.Update)
	admin.PUT("/rooms/:id/maintenance", roomHandler.SetMaintenance)
	admin.POST("/announcements", announcementHandler.Create)
	admin.GET("/announcements", announcementHandler.List)
	admin.GET("/announcements/:id", announcementHandler.Get)
	admin.PUT("/announcements/:id", announcementHandler.Update)
	admin.POST("/announcements/:id/publish", announcementHandler.Publish)
	admin.POST("/announcements/:id/suspend", announcementHandler.Suspend)
	admin.DELETE("/announcements/:id", announcementHandler.Delete)
	admin.PUT("/maintenance/:id/status", maintenanceHandler.UpdateStatus)
	admin.DELETE("/maintenance/:id", maintenanceHandler.Delete)

	// SuperAdmin only
	super := authed.Group("", middleware.RequireRole(models.RoleSuperAdmin))
	super.POST("/accounts", authHandler.CreateStaffAccount)
	super.GET("/accounts", accountHandler.List)
	super.GET("/accounts/:id", accountHandler.Get)
	super.PUT("/accounts/:id/status", accountHandler.UpdateStatus)
	super.DELETE("/accounts/:id", accountHandler.Delete)
	super.DELETE("/rooms/:id", roomHandler.Delete)
	super.DELETE("/archives/:id", archiveHandler.Delete)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

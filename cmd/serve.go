package cmd

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/petmatch/auth-service/app/controller"
	"github.com/petmatch/auth-service/app/middleware"
	"github.com/petmatch/auth-service/app/repository"
	"github.com/petmatch/auth-service/app/service"
	"github.com/petmatch/auth-service/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP server and the background sweep of expired revocation entries.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	userRepo := repository.NewUserRepository(db)
	revokedRepo := repository.NewRevokedTokenRepository(db)
	tokens := service.NewTokenCodec(cfg.JWTSecret)
	authService := service.NewAuthService(db, userRepo, revokedRepo, tokens, service.LogResetMailer{}, cfg)
	profileService := service.NewProfileService(userRepo)

	go runRevocationSweeper(authService, cfg.RevocationSweepInterval)

	startHTTPServer(cfg, authService, profileService)
}

func runRevocationSweeper(authService *service.AuthService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		purged, err := authService.PurgeExpiredRevocations(ctx)
		cancel()
		if err != nil {
			logrus.WithError(err).Error("Revocation sweep failed")
			continue
		}
		if purged > 0 {
			logrus.WithField("purged", purged).Info("Expired revocation entries purged")
		}
	}
}

func startHTTPServer(cfg *config.Config, authService *service.AuthService, profileService *service.ProfileService) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(profileService, authService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register/owner", authController.RegisterOwner)
	auth.POST("/register/clinic", authController.RegisterClinic)
	auth.POST("/login", authController.Login)
	auth.POST("/logout", authController.Logout)
	auth.POST("/forgot-password", authController.ForgotPassword)
	auth.POST("/reset-password", authController.ResetPassword)

	authProtected := auth.Group("")
	authProtected.Use(authMiddleware.RequireAuth)
	authProtected.POST("/verify-token", authController.VerifyToken)
	authProtected.PUT("/change-password", authController.ChangePassword)

	user := api.Group("/user")
	user.Use(authMiddleware.RequireAuth)
	user.GET("/profile", userController.GetProfile)
	user.PATCH("/profile", userController.UpdateProfile)
	user.DELETE("/account", userController.DeleteAccount)

	if cfg.DebugEndpoints {
		logrus.Warn("Debug endpoints enabled; do not run this in production")
		debugController := controller.NewDebugController(authService)
		api.POST("/debug/reset-token", debugController.ResetToken)
	}

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

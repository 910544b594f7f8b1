package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"agroterra/internal/config"
	"agroterra/internal/handlers"
	"agroterra/internal/middleware"
	"agroterra/internal/pdf"
	"agroterra/internal/repositories"
	"agroterra/internal/routes"
	"agroterra/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "agroterra/docs"
)

func flowPolicy(c config.FlowPolicyConfig) services.FlowPolicy {
	return services.FlowPolicy{
		PinTTL:            c.PinTTL(),
		MaxAttempts:       c.MaxAttempts,
		LockDuration:      c.LockDuration(),
		ResendMinGap:      c.ResendGap(),
		ExemptFirstResend: c.ExemptFirstResend,
	}
}

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	clock := clockwork.NewRealClock()

	// === Repos ===
	accountRepo := repositories.NewAccountRepository(db)
	credentialRepo := repositories.NewCredentialRepository(db)
	farmRepo := repositories.NewFarmRepository(db)
	plotRepo := repositories.NewPlotRepository(db)
	cropRepo := repositories.NewCropRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	costRepo := repositories.NewCostRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	tokenService := services.NewTokenService(
		[]byte(cfg.Security.JWTSecret),
		time.Duration(cfg.Security.SessionTTLMinutes)*time.Minute,
		clock,
	)

	registrationService := services.NewRegistrationService(
		accountRepo, credentialRepo, emailService, authService, clock,
		flowPolicy(cfg.Security.Registration),
	)
	loginService := services.NewLoginService(
		accountRepo, credentialRepo, emailService, authService, tokenService, clock,
		services.LoginPolicy{
			MaxFailedPasswords: cfg.Security.MaxFailedPasswords,
			LockDuration:       time.Duration(cfg.Security.PasswordLockMin) * time.Minute,
			RefreshTTL:         time.Duration(cfg.Security.RefreshTTLHours) * time.Hour,
		},
		flowPolicy(cfg.Security.TwoFactor),
	)
	recoveryService := services.NewRecoveryService(
		accountRepo, credentialRepo, emailService, authService, clock,
		flowPolicy(cfg.Security.Recovery),
	)

	accountService := services.NewAccountService(accountRepo, credentialRepo)
	farmService := services.NewFarmService(farmRepo)
	plotService := services.NewPlotService(plotRepo, farmRepo)
	cropService := services.NewCropService(cropRepo, plotRepo)
	costService := services.NewCostService(costRepo, farmRepo)

	var telegramService *services.TelegramService
	if cfg.Telegram.Enabled {
		telegramService, err = services.NewTelegramService(cfg.Telegram.BotToken, accountRepo)
		if err != nil {
			log.Printf("[telegram] disabled: %v", err)
		}
	}
	taskService := services.NewTaskService(taskRepo, telegramService)

	pdfGen := pdf.NewReportGenerator(cfg.Files.RootDir, "assets/fonts/DejaVuSans.ttf")
	reportService := services.NewReportService(costRepo, farmRepo, pdfGen)

	// === Handlers ===
	registerHandler := handlers.NewRegisterHandler(registrationService)
	authHandler := handlers.NewAuthHandler(loginService)
	recoveryHandler := handlers.NewRecoveryHandler(recoveryService)
	accountHandler := handlers.NewAccountHandler(accountService)
	farmHandler := handlers.NewFarmHandler(farmService)
	plotHandler := handlers.NewPlotHandler(plotService)
	cropHandler := handlers.NewCropHandler(cropService)
	taskHandler := handlers.NewTaskHandler(taskService)
	costHandler := handlers.NewCostHandler(costService)
	reportHandler := handlers.NewReportHandler(reportService)

	middleware.SetJWTKey([]byte(cfg.Security.JWTSecret))

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.RequestID())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		registerHandler,
		authHandler,
		recoveryHandler,
		accountHandler,
		farmHandler,
		plotHandler,
		cropHandler,
		taskHandler,
		costHandler,
		reportHandler,
	)

	// Task reminders go out from a single loop; missed ticks are picked up
	// on the next pass since the query keys off reminder_at.
	if telegramService != nil {
		go runReminderLoop(taskService)
	}

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func runReminderLoop(tasks services.TaskService) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		sent, err := tasks.SendDueReminders(ctx, 100)
		cancel()
		if err != nil {
			log.Printf("[tasks][reminders] sweep failed: %v", err)
			continue
		}
		if sent > 0 {
			log.Printf("[tasks][reminders] sent %d reminders", sent)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

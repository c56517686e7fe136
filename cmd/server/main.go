package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/maintsys/mro-stock-service/config"
	"github.com/maintsys/mro-stock-service/internal/audit"
	"github.com/maintsys/mro-stock-service/internal/auth"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/pkg/broker"
	"github.com/maintsys/mro-stock-service/internal/pkg/cache"
	"github.com/maintsys/mro-stock-service/internal/pkg/database"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"

	historyH "github.com/maintsys/mro-stock-service/internal/history/handler"
	historyRepoPkg "github.com/maintsys/mro-stock-service/internal/history/repository"
	historyUCPkg "github.com/maintsys/mro-stock-service/internal/history/usecase"

	partH "github.com/maintsys/mro-stock-service/internal/part/handler"
	partRepoPkg "github.com/maintsys/mro-stock-service/internal/part/repository"
	partUCPkg "github.com/maintsys/mro-stock-service/internal/part/usecase"

	stockH "github.com/maintsys/mro-stock-service/internal/stock/handler"
	stockListenerPkg "github.com/maintsys/mro-stock-service/internal/stock/listener"
	stockRepoPkg "github.com/maintsys/mro-stock-service/internal/stock/repository"
	stockUCPkg "github.com/maintsys/mro-stock-service/internal/stock/usecase"

	userH "github.com/maintsys/mro-stock-service/internal/user/handler"
	userRepoPkg "github.com/maintsys/mro-stock-service/internal/user/repository"
	userUCPkg "github.com/maintsys/mro-stock-service/internal/user/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Redis. The cache is an optimization; the service runs
	// without it.
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis (caching disabled)", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. Initialize Kafka
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.ConsumeTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()

	kafkaProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.ProduceTopic,
	})
	defer kafkaProducer.Close()
	appLogger.Info("Connected to Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("consume_topic", cfg.Kafka.ConsumeTopic),
		zap.String("produce_topic", cfg.Kafka.ProduceTopic),
	)

	// 6. Initialize Repositories
	auditor := audit.NewRecorder(db, appLogger)
	stockRepo := stockRepoPkg.NewPGRepository(db)
	partRepo := partRepoPkg.NewPGRepository(db)
	historyRepo := historyRepoPkg.NewPGRepository(db)
	userRepo := userRepoPkg.NewPGRepository(db)

	// 7. Initialize UseCases
	jwtTTL := time.Duration(cfg.JWT.TTLMinutes) * time.Minute
	stockUC := stockUCPkg.NewStockUseCase(stockRepo, redisClient, kafkaProducer, appLogger)
	partUC := partUCPkg.NewPartUseCase(partRepo, redisClient, auditor, appLogger)
	historyUC := historyUCPkg.NewHistoryUseCase(historyRepo, redisClient, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo, auditor, appLogger, cfg.JWT.SecretKey, jwtTTL)

	// 8. Start the work-order listener
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stockListener := stockListenerPkg.NewStockListener(kafkaConsumer, stockUC, appLogger)
	go stockListener.Start(ctx)

	// 9. Initialize Handlers
	stockHandler := stockH.NewStockHandler(stockUC, appLogger)
	partHandler := partH.NewPartHandler(partUC, appLogger)
	historyHandler := historyH.NewHistoryHandler(historyUC, appLogger)
	userHandler := userH.NewUserHandler(userUC, appLogger)

	// 10. HTTP server
	app := fiber.New(fiber.Config{
		AppName: "mro-stock-service",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(cors.New())

	registerRoutes(app, cfg.JWT.SecretKey, stockHandler, partHandler, historyHandler, userHandler)

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := app.Listen(port); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	if err := app.Shutdown(); err != nil {
		appLogger.Error("shutdown error", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func registerRoutes(
	app *fiber.App,
	jwtSecret string,
	stockHandler *stockH.StockHandler,
	partHandler *partH.PartHandler,
	historyHandler *historyH.HistoryHandler,
	userHandler *userH.UserHandler,
) {
	api := app.Group("/api")

	api.Post("/auth/login", userHandler.Login)

	authed := api.Group("", auth.JWTMiddleware(jwtSecret))

	adminOnly := auth.RequireRole(model.RoleAdmin)
	supervisorUp := auth.RequireRole(model.RoleAdmin, model.RoleSupervisor)
	technicianUp := auth.RequireRole(model.RoleAdmin, model.RoleSupervisor, model.RoleTechnician)

	// Fixed paths before the :part_number parameter.
	authed.Get("/parts/low-stock", partHandler.LowStock)
	authed.Get("/parts/summary", partHandler.Summary)
	authed.Get("/parts", partHandler.ListParts)
	authed.Post("/parts", adminOnly, partHandler.CreatePart)
	authed.Get("/parts/:part_number", partHandler.GetPart)
	authed.Put("/parts/:part_number", adminOnly, partHandler.UpdatePart)
	authed.Post("/parts/:part_number/deactivate", adminOnly, partHandler.DeactivatePart)
	authed.Post("/parts/:part_number/reactivate", adminOnly, partHandler.ReactivatePart)
	authed.Delete("/parts/:part_number", adminOnly, partHandler.DeletePart)

	authed.Post("/work-orders/:id/parts-used", technicianUp, stockHandler.RecordConsumption)
	authed.Get("/work-orders/:id/parts-used", stockHandler.ListUsageForWorkOrder)

	authed.Post("/stock/receipts", supervisorUp, stockHandler.ReceiveStock)
	authed.Post("/stock/adjustments", supervisorUp, stockHandler.AdjustStock)
	authed.Get("/stock/movements", stockHandler.ListMovements)

	authed.Get("/equipment/:id/health", historyHandler.HealthScore)
	authed.Get("/equipment/:id/timeline", historyHandler.Timeline)
	authed.Get("/equipment/:id/trends", historyHandler.Trends)

	authed.Get("/users", adminOnly, userHandler.ListUsers)
	authed.Post("/users", adminOnly, userHandler.CreateUser)
	authed.Post("/users/me/password", userHandler.ChangePassword)
	authed.Put("/users/:id", adminOnly, userHandler.UpdateUser)
	authed.Post("/users/:id/deactivate", adminOnly, userHandler.DeactivateUser)
	authed.Post("/users/:id/reset-password", adminOnly, userHandler.ResetPassword)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"orientation-service/internal/config"
	mongodb "orientation-service/internal/database/mongo"
	redisdb "orientation-service/internal/database/redis"
	"orientation-service/internal/event"
	"orientation-service/internal/handlers"
	"orientation-service/internal/metrics"
	"orientation-service/internal/middleware"
	"orientation-service/internal/models"
	"orientation-service/internal/repository"
	"orientation-service/internal/service"
	"orientation-service/pkg/discovery"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// setupLogging writes to a daily file under dir, or keeps stderr when dir is empty.
func setupLogging(dir string) (*os.File, error) {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}
	log.SetOutput(file)
	gin.DefaultWriter = file
	gin.DefaultErrorWriter = file
	return file, nil
}

type indexed interface {
	InitializeIndexes(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.DefaultConfig(cfg.MongoURI, cfg.MongoDatabase))
	if err != nil {
		cancel()
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Disconnect(mongoClient)

	redisClient := redisdb.NewClient(ctx, redisdb.RedisConfig{
		Address:  cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	publisher, err := event.NewPublisher(cfg.RabbitMQURI, cfg.EventExchange)
	if err != nil {
		log.Printf("Warning: Failed to connect to RabbitMQ, events will not be published: %v", err)
		publisher = event.NoopPublisher{}
	}
	defer publisher.Close()

	quizRepo := repository.NewQuizRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	formationRepo := repository.NewFormationRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	userRepo := repository.NewUserRepository(db)
	adviceRepo := repository.NewAdviceRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient)

	for _, repo := range []indexed{quizRepo, completionRepo, formationRepo, universityRepo, userRepo, adviceRepo} {
		if err := repo.InitializeIndexes(ctx); err != nil {
			log.Printf("Warning: Failed to initialize indexes: %v", err)
		}
	}

	jwtService := service.NewJWTService(cfg.JWTSecret, cfg.JWTExpired)
	authService := service.NewAuthService(userRepo, sessionRepo, jwtService)
	userService := service.NewUserService(userRepo, publisher)
	quizService := service.NewQuizService(quizRepo, completionRepo, userRepo)
	gradingService := service.NewGradingService(quizRepo, completionRepo, userRepo, publisher)
	resultService := service.NewResultService(completionRepo, userRepo, quizRepo)
	recommendationService := service.NewRecommendationService(quizRepo, formationRepo, universityRepo)
	catalogService := service.NewCatalogService(formationRepo, universityRepo)
	adviceService := service.NewAdviceService(adviceRepo, userRepo, publisher)
	statsService := service.NewStatsService(userRepo, formationRepo, universityRepo, completionRepo)

	err = userService.EnsureDefaultAccounts(ctx, []service.DefaultAccount{
		{Email: cfg.AdminEmail, Password: cfg.AdminPassword, FirstName: "Admin", LastName: "Orientation", Phone: "0000000000", Role: models.RoleAdmin},
		{Email: cfg.CounselorEmail, Password: cfg.CounselorPassword, FirstName: "Conseiller", LastName: "Orientation", Phone: "0000000000", Role: models.RoleCounselor},
	})
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	cancel()

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[HTTP] %v | %3d | %13v | %15s | %-7s %#v\n%s",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.StatusCode,
			param.Latency,
			param.ClientIP,
			param.Method,
			param.Path,
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(metrics.Middleware())
	r.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:            handlers.NewAuthHandler(authService, userService),
		Users:           handlers.NewUserHandler(userService),
		Quizzes:         handlers.NewQuizHandler(quizService, gradingService, resultService),
		Recommendations: handlers.NewRecommendationHandler(recommendationService),
		Catalog:         handlers.NewCatalogHandler(catalogService),
		Advice:          handlers.NewAdviceHandler(adviceService),
		Stats:           handlers.NewStatsHandler(statsService),
		Health: handlers.NewHealthHandler(cfg.ServiceName, map[string]handlers.HealthCheck{
			"mongodb": func(ctx context.Context) error {
				if !mongodb.IsConnected(ctx, mongoClient) {
					return errors.New("mongodb is unreachable")
				}
				return nil
			},
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		}),
	}, authService)

	registry, err := discovery.NewServiceRegistry(cfg)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	if registry != nil {
		if err := registry.Register(); err != nil {
			log.Printf("Warning: %v", err)
		}
	} else {
		log.Println("CONSUL_ADDRESS not set, skipping service registration")
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Printf("Error deregistering service: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	log.Println("Server exited, goodbye!")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fadilmartias/signal/internal/cache"
	"github.com/fadilmartias/signal/internal/config"
	"github.com/fadilmartias/signal/internal/domain/fiber/handler"
	"github.com/fadilmartias/signal/internal/logger"
	"github.com/fadilmartias/signal/internal/middleware"
	"github.com/fadilmartias/signal/internal/model"
	"github.com/fadilmartias/signal/internal/repository"
	"github.com/fadilmartias/signal/internal/scoring"
	"github.com/fadilmartias/signal/internal/service"
	"github.com/fadilmartias/signal/internal/usecase"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	zl, err := logger.New(appConfig.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	rankingConfig := config.LoadRankingConfig()
	params := scoring.Params{
		IntentCap:        rankingConfig.IntentCap,
		RelevanceAlpha:   rankingConfig.RelevanceAlpha,
		FinalScoreWeight: rankingConfig.FinalScoreWeight,
	}
	embedCache := cache.NewEmbeddingCache(rankingConfig.EmbedCacheSize)

	store := buildStore(zl)

	gemini, err := service.NewGeminiService(ctx, zl)
	if err != nil {
		zl.Fatal("gemini service init failed", zap.Error(err))
	}
	explain := service.NewExplainService(gemini, zl)

	searchUC := usecase.NewSearchUsecase(store, gemini, embedCache, params, rankingConfig.MaxResults, zl)
	ingestUC := usecase.NewIngestUsecase(store, gemini, explain, embedCache, params, zl)
	candidateUC := usecase.NewCandidateUsecase(store)

	h := handler.NewSearchHandler(searchUC, ingestUC, candidateUC)
	h.RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			zl.Debug("goroutine count", zap.Int("count", runtime.NumGoroutine()))
		}
	}()

	zl.Info("server running", zap.String("port", appConfig.Port))
	if err := app.Listen(appConfig.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func buildStore(zl *zap.Logger) repository.RecordStore {
	if os.Getenv("STORE_DRIVER") == "airtable" {
		store, err := repository.NewAirtableStore()
		if err != nil {
			zl.Fatal("airtable store init failed", zap.Error(err))
		}
		zl.Info("using airtable record store")
		return store
	}
	return repository.NewCandidateRepository(connectDB(zl))
}

func connectDB(zl *zap.Logger) *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		zl.Fatal("could not connect to database", zap.Error(err))
	}
	pgDB, err := db.DB()
	if err != nil {
		zl.Fatal("could not get database instance", zap.Error(err))
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.Candidate{}, &model.Application{}); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	return db
}

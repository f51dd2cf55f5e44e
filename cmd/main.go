package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Vovarama1992/dream_interpreter/internal/config"
	"github.com/Vovarama1992/dream_interpreter/internal/delivery"
	"github.com/Vovarama1992/dream_interpreter/internal/dreams"
	"github.com/Vovarama1992/dream_interpreter/internal/error_notificator"
	"github.com/Vovarama1992/dream_interpreter/internal/interpret"
	"github.com/Vovarama1992/dream_interpreter/internal/payment"
	"github.com/Vovarama1992/dream_interpreter/internal/storage"
	"github.com/Vovarama1992/dream_interpreter/internal/telegram"
	"github.com/Vovarama1992/dream_interpreter/internal/users"
)

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()
	zl := logger.NewZapLogger(sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// DB
	// =========================================================================

	db, err := storage.OpenDB(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db, cfg.DBDriver); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	errInfra := error_notificator.NewInfra(nil, cfg.AdminChatID, sugar)
	errService := error_notificator.NewService(errInfra)

	// =========================================================================
	// INTERPRETATION PIPELINE
	// =========================================================================

	llm := interpret.NewOpenRouterClient(interpret.OpenRouterConfig{
		APIKey:      cfg.OpenRouterAPIKey,
		BaseURL:     cfg.OpenRouterBaseURL,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
		Referer:     cfg.AppReferer,
		Title:       cfg.AppTitle,
	}, sugar)
	interpreter := interpret.NewService(interpret.NewContextBuilder(cfg.HistoryLimit), llm, sugar)

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	userService := users.NewService(db, users.NewInfra(db))

	var exporter dreams.Exporter
	if cfg.S3Enabled() {
		exporter, err = dreams.NewS3Exporter(ctx, dreams.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Insecure:  cfg.S3Insecure,
		})
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
	} else {
		log.Printf("[main] S3 is not configured, history export disabled")
	}

	dreamService := dreams.NewService(
		dreams.NewRepo(db),
		userService,
		interpreter,
		exporter,
		errService,
		cfg.HistoryLimit,
		sugar,
	)

	paymentService := payment.NewRobokassa(payment.Config{
		MerchantLogin: cfg.RobokassaLogin,
		Password1:     cfg.RobokassaPassword1,
	}, sugar)

	// =========================================================================
	// TELEGRAM
	// =========================================================================

	// бот и HTTP-сервер должны закончить работу до закрытия БД
	var running sync.WaitGroup

	if cfg.TelegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		log.Printf("[main] bot ready: @%s", bot.Self.UserName)

		errInfra.SetBot(bot)

		botApp := telegram.NewBotApp(bot, userService, dreamService, sugar)
		running.Add(1)
		go func() {
			defer running.Done()
			botApp.Run(ctx)
		}()
	} else {
		log.Printf("[main] TELEGRAM_BOT_TOKEN is not set, bot disabled")
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", delivery.RequestIDHeader},
		ExposedHeaders: []string{delivery.RequestIDHeader},
	}))

	delivery.RegisterRoutes(
		r,
		delivery.NewChatHandler(dreamService, zl),
		delivery.NewUserHandler(userService, dreamService, zl),
		delivery.NewPaymentHandler(paymentService, zl),
		cfg.InterpretRateLimit,
	)

	// =========================================================================
	// START SERVER
	// =========================================================================

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	running.Add(1)
	go func() {
		defer running.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + srv.Addr,
		Service: "dream_interpreter",
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}

	running.Wait()
	log.Printf("[main] stopped")
}

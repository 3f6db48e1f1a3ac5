package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"sakanka/internal/app"
	"sakanka/internal/config"
	"sakanka/internal/metrics"
	"sakanka/internal/notify"
	"sakanka/internal/ratelimit"
	"sakanka/internal/server"
	"sakanka/internal/util"
	"sakanka/pkg/ai"
	"sakanka/pkg/auth"
	"sakanka/pkg/queue"
	"sakanka/pkg/storage"
	"sakanka/pkg/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		util.Fatal("failed to parse session TTL", "err", err)
	}
	if sessionTTL == 0 {
		sessionTTL = 24 * time.Hour
	}
	if cfg.RedisAddr == "" {
		util.Fatal("redisAddr is required")
	}

	var st store.Store
	if cfg.DatabaseURL != "" {
		gormStore, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			util.Fatal("failed to open database", "err", err)
		}
		st = gormStore
		logger.Info("using postgres store")
	} else {
		st = store.NewMemoryStore()
		logger.Warn("no databaseURL configured, using in-memory store")
	}

	sessions := store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, sessionTTL)
	tokens, err := store.NewJWTTokenManager(cfg.JWTSecret, sessionTTL)
	if err != nil {
		util.Fatal("failed to init token manager", "err", err)
	}
	otpStore, err := auth.NewOTPStore(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		util.Fatal("failed to init otp store", "err", err)
	}

	var voiceLimiter, otpLimiter *ratelimit.FixedWindowLimiter
	if cfg.VoiceRateLimitPerMinute > 0 {
		voiceLimiter, err = ratelimit.NewFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "rl:voice", cfg.VoiceRateLimitPerMinute, time.Minute)
		if err != nil {
			util.Fatal("failed to init voice rate limiter", "err", err)
		}
	}
	if cfg.OTPRateLimitPerMinute > 0 {
		otpLimiter, err = ratelimit.NewFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "rl:otp", cfg.OTPRateLimitPerMinute, time.Minute)
		if err != nil {
			util.Fatal("failed to init otp rate limiter", "err", err)
		}
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(
			cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			util.Fatal("failed to init object store", "err", err)
		}
		logger.Info("using minio object store", "bucket", cfg.MinioBucket)
	} else {
		logger.Warn("no minio endpoint configured, image uploads disabled")
	}

	var sender notify.Sender
	if cfg.TwilioAccountSID != "" {
		sender, err = notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		if err != nil {
			util.Fatal("failed to init twilio sender", "err", err)
		}
		logger.Info("using twilio sms sender")
	} else {
		sender = &notify.LogSender{Logger: logger}
		logger.Warn("no twilio credentials configured, logging sms instead")
	}

	notifyQueue, err := queue.NewRedisNotifyQueue(queue.RedisQueueConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		Stream:   cfg.NotifyStream,
		Group:    cfg.NotifyGroup,
	})
	if err != nil {
		util.Fatal("failed to init notify queue", "err", err)
	}
	worker := notify.NewWorker(notifyQueue, sender, logger)

	chat := ai.NewChatClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.ChatModel)
	transcriber := ai.NewTranscriptionClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.WhisperModel)

	var synthesizer ai.SpeechSynthesizer
	if cfg.TTSAPIKey != "" {
		speech, err := ai.NewSpeechClient(
			cfg.TTSBaseURL, cfg.TTSAPIKey, cfg.TTSModel, cfg.TTSDefaultVoice, cfg.TTSVoices)
		if err != nil {
			util.Fatal("failed to init speech client", "err", err)
		}
		synthesizer = speech
	} else {
		logger.Warn("no TTS key configured, speech synthesis disabled")
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	notifier := notify.NewQueueNotifier(notifyQueue, m)
	listings := app.NewListings(st, objects, notifier, logger)

	httpServer := server.New(server.Config{
		Listings:     listings,
		Extractor:    app.NewExtractor(chat),
		Assistant:    app.NewAssistantChat(chat),
		Transcriber:  transcriber,
		Synthesizer:  synthesizer,
		Store:        st,
		Sessions:     sessions,
		Tokens:       tokens,
		OTP:          otpStore,
		Notifier:     notifier,
		Metrics:      m,
		Registry:     reg,
		VoiceLimiter: voiceLimiter,
		OTPLimiter:   otpLimiter,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	concurrency := cfg.NotifyConcurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return worker.Run(gctx, concurrency)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

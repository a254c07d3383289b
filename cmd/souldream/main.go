package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/souldream/backend/internal/chat"
	"github.com/souldream/backend/internal/config"
	"github.com/souldream/backend/internal/handler"
	"github.com/souldream/backend/internal/kafka"
	"github.com/souldream/backend/internal/logger"
	"github.com/souldream/backend/internal/metrics"
	"github.com/souldream/backend/internal/push"
	"github.com/souldream/backend/internal/router"
	"github.com/souldream/backend/internal/service"
	"github.com/souldream/backend/internal/storage"
	"github.com/souldream/backend/pkg/tracing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l := logger.NewJSONLogger()
	slog.SetDefault(l)

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Setup(ctx, cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint, l)
		if err != nil {
			l.Error("Failed to initialize tracing", slog.Any("error", err))
			os.Exit(1)
		}
		defer shutdown()
	}

	dbPool, err := storage.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		l.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbPool.Close()

	// Storage layer
	notifStore := storage.NewNotificationStorage(dbPool)
	goalStore := storage.NewGoalStorage(dbPool)
	userStore := storage.NewUserStorage(dbPool)

	// Kafka producer
	saramaProducerCfg := sarama.NewConfig()
	saramaProducerCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaProducerCfg.Producer.Retry.Max = 5
	saramaProducerCfg.Producer.Return.Successes = true
	saramaProducerCfg.ClientID = "souldream-producer"

	asyncProducer, err := sarama.NewAsyncProducer(cfg.Kafka.Brokers, saramaProducerCfg)
	if err != nil {
		l.Error("Failed to create kafka producer", slog.Any("error", err))
		os.Exit(1)
	}

	var producerWG sync.WaitGroup
	tracer := tracing.NewTracer(otel.Tracer("souldream"))
	eventProducer := kafka.NewProducer(asyncProducer, cfg.Kafka.Topic, l, &producerWG, tracer)
	eventProducer.Start(ctx)
	defer eventProducer.Close(ctx)

	// Push transports
	fcmChannel := push.NewFCMChannel(cfg.FCM, l)
	twilioChannel := push.NewTwilioChannel(cfg.Twilio, l)

	// Service layer
	tokenSvc := service.NewJWTService(cfg.Auth.Secret, cfg.Auth.TokenExpiry, l)
	authSvc := service.NewAuthService(userStore, l, tokenSvc)
	notifSvc := service.NewNotificationService(notifStore, fcmChannel, twilioChannel, l)
	prefSvc := service.NewPreferenceService(notifStore, l)
	goalSvc := service.NewGoalService(goalStore, eventProducer, l)
	planSvc := service.NewPlanService(l)
	healthSvc := service.NewHealthService(notifStore, l)
	chatClient := chat.NewClient(cfg.Chat, l)

	// Kafka consumer feeding the fan-out pipeline
	saramaConsumerCfg := sarama.NewConfig()
	saramaConsumerCfg.Version = sarama.V2_1_0_0
	saramaConsumerCfg.Consumer.Return.Errors = true

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, saramaConsumerCfg)
	if err != nil {
		l.Error("Failed to create kafka consumer group", slog.Any("error", err))
		os.Exit(1)
	}
	consumer := kafka.NewConsumer(cfg.Kafka.Topic, consumerGroup, notifSvc, l, tracer)

	// HTTP layer
	h := router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc, l),
		Plan:         handler.NewPlanHandler(planSvc, l),
		Chat:         handler.NewChatHandler(chatClient, l),
		Notification: handler.NewNotificationHandler(notifSvc, prefSvc, l),
		Goal:         handler.NewGoalHandler(goalSvc, l),
		Health:       handler.NewHealthHandler(healthSvc),
	}

	server := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router.NewRouter(h, authSvc),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info("Server started", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := consumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		l.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Error("Service stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	l.Info("Service shut down gracefully")
}

package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/iliyamo/freelance-gateway/internal/auth"
	"github.com/iliyamo/freelance-gateway/internal/breaker"
	"github.com/iliyamo/freelance-gateway/internal/client"
	"github.com/iliyamo/freelance-gateway/internal/config"
	"github.com/iliyamo/freelance-gateway/internal/database"
	"github.com/iliyamo/freelance-gateway/internal/handler"
	"github.com/iliyamo/freelance-gateway/internal/limiter"
	"github.com/iliyamo/freelance-gateway/internal/logger"
	"github.com/iliyamo/freelance-gateway/internal/metrics"
	"github.com/iliyamo/freelance-gateway/internal/queue"
	"github.com/iliyamo/freelance-gateway/internal/repository"
	"github.com/iliyamo/freelance-gateway/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()
	svcCfg := config.LoadServicesConfig()

	zl := logger.New(cfg.Env)
	defer func() { _ = zl.Sync() }()
	logger.Initialize(zl)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	store := repository.NewStore(db)

	// Redis backs the rate limiter only. A nil client means the limiter
	// fails open, which is logged inside the limiter itself.
	rdb := config.NewRedisClient()
	fw := limiter.NewFixedWindow(rdb, rlCfg, zl)

	// Auth events flow through RabbitMQ; the consumer writes the audit feed.
	events := queue.NewPublisher(svcCfg.AMQPURL, zl)
	defer events.Close()
	go func() {
		if err := queue.StartAuthConsumer(svcCfg.AMQPURL); err != nil {
			zl.Warn("auth event consumer stopped", zap.Error(err))
		}
	}()

	engine := auth.NewEngine(cfg, store, events, zl)

	// Backend clients: user, task and recommendation services answer over
	// NATS request/reply; presence is plain HTTP. Each gets its own breaker
	// so one failing dependency never blocks the others.
	nc, err := nats.Connect(svcCfg.NATSURL, nats.Name("freelance-gateway"))
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer nc.Close()

	reg := metrics.NewRegistry()
	newClient := func(name string, t client.Transport) *client.ServiceClient {
		b := breaker.New(name, svcCfg.FailureThreshold, svcCfg.RecoveryTimeout)
		return client.NewServiceClient(name, t, b, reg, svcCfg.CallTimeout, "Ping", zl)
	}
	userSC := newClient("user-service", client.NewNATSTransport(nc, "user"))
	taskSC := newClient("task-service", client.NewNATSTransport(nc, "task"))
	recSC := newClient("recommendation-service", client.NewNATSTransport(nc, "recommendation"))
	presenceSC := newClient("presence-service", client.NewHTTPTransport(svcCfg.PresenceURL))

	users := client.NewUserServiceClient(userSC)
	tasks := client.NewTaskServiceClient(taskSC)
	recs := client.NewRecommendationServiceClient(recSC)
	presence := client.NewPresenceServiceClient(presenceSC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	router.RegisterGlobal(e, engine, fw, rlCfg.Enabled)
	router.RegisterOps(e,
		handler.NewHealthHandler(userSC, taskSC, recSC, presenceSC),
		handler.NewMetricsHandler(reg))
	router.RegisterAuth(e, handler.NewAuthHandler(engine), engine)
	router.RegisterGateway(e, handler.NewGatewayHandler(users, tasks, recs, presence), engine)

	addr := ":" + cfg.Port
	zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

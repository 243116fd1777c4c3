package main

import (
	stdlog "log"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campusjam/CampusJam/config"
	"github.com/campusjam/CampusJam/internal/consumer"
	"github.com/campusjam/CampusJam/internal/handlers"
	"github.com/campusjam/CampusJam/internal/pkg/presence"
	"github.com/campusjam/CampusJam/internal/repositories"
	"github.com/campusjam/CampusJam/internal/routers"
	"github.com/campusjam/CampusJam/internal/services"
	"github.com/campusjam/CampusJam/internal/storage"
	internalutils "github.com/campusjam/CampusJam/internal/utils"
	"github.com/campusjam/CampusJam/internal/ws"
	log "github.com/campusjam/CampusJam/middleware/log"
	"github.com/campusjam/CampusJam/pkg/mq"
	pkgutils "github.com/campusjam/CampusJam/pkg/utils"
	"github.com/campusjam/CampusJam/utils/ratelimit"
	"github.com/campusjam/CampusJam/utils/snowflake"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	logger, err := log.NewLogger(&cfg.Logging)
	if err != nil {
		stdlog.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Close()

	pkgutils.SetJWTSecret(cfg.JWT.Secret)

	// 初始化全局 Worker Pool (协程池)
	// 用于异步处理请求与 best-effort 副作用，防止高并发下 Goroutine 暴涨
	internalutils.InitGlobalWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)

	// 初始化 PostgreSQL
	dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	postgres, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		stdlog.Fatalf("failed to init postgres: %v", err)
	}

	// 初始化 Redis
	redisClient, err := storage.InitRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, cfg.Redis.MinIdleConns)
	if err != nil {
		stdlog.Fatalf("failed to init redis: %v", err)
	}

	// 消息 ID 生成器
	idGen, err := snowflake.NewGenerator(cfg.Server.NodeID)
	if err != nil {
		stdlog.Fatalf("failed to init snowflake generator: %v", err)
	}

	limiter := ratelimit.NewRedisLimiter(redisClient, logger.Logger, true)
	tracker := presence.NewTracker(redisClient, presence.DefaultTTL)

	// 初始化仓储层
	userRepo := repositories.NewUserRepository(postgres)
	socialRepo := repositories.NewSocialRepository(postgres)
	sessionRepo := repositories.NewSessionRepository(postgres)
	messageRepo := repositories.NewMessageRepository(postgres)
	notificationRepo := repositories.NewNotificationRepository(postgres)
	reportRepo := repositories.NewReportRepository(postgres)

	// 初始化 Kafka Producer
	var producer services.EventProducer
	kafkaProducer, err := mq.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		stdlog.Printf("kafka producer init failed: %v, falling back to in-process dispatch", err)
	} else {
		producer = kafkaProducer
		defer kafkaProducer.Close()
	}

	// 初始化 WebSocket Hub
	hub := ws.NewHub(tracker, logger.Logger)
	go hub.Run()

	// 初始化服务层
	notificationService := services.NewNotificationService(notificationRepo, userRepo, producer, hub, logger.Logger)
	socialService := services.NewSocialService(socialRepo, userRepo, notificationService)
	authService := services.NewAuthService(userRepo)
	sessionService := services.NewSessionService(sessionRepo, userRepo, socialService)
	messageService := services.NewMessageService(
		messageRepo, userRepo, sessionRepo, socialService,
		idGen, limiter, cfg.RateLimit.MessagesPerMinute, hub,
	)
	reportService := services.NewReportService(reportRepo, userRepo, logger.Logger)

	// 初始化 Kafka Consumer (如果 Kafka 可用)
	if kafkaProducer != nil {
		eventConsumer := consumer.NewEventConsumer(notificationService)
		if err := consumer.StartConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, eventConsumer); err != nil {
			stdlog.Printf("kafka consumer init failed: %v", err)
		}
	}

	// 初始化处理器
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(socialService, reportService)
	sessionHandler := handlers.NewSessionHandler(sessionService, messageService)
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// 配置并创建 Gin 引擎
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	routers.SetupRoutes(r,
		cfg,
		logger,
		limiter,
		authHandler,
		userHandler,
		sessionHandler,
		messageHandler,
		notificationHandler,
		hub,
		messageService,
		notificationService,
	)

	logger.Info("server starting", zap.Int("port", cfg.Server.Port))
	if err := r.Run(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		stdlog.Fatalf("failed to start server: %v", err)
	}
}

package bootstrap

import (
	"context"
	"log"

	"restaurant-advisor-be/internal/config"
	"restaurant-advisor-be/internal/controller"
	"restaurant-advisor-be/internal/pkg/logger"
	repomemory "restaurant-advisor-be/internal/repository/memory"
	"restaurant-advisor-be/internal/repository/unitofwork"
	"restaurant-advisor-be/internal/service"
	"restaurant-advisor-be/pkg/advisor/fusion"
	advisormemory "restaurant-advisor-be/pkg/advisor/memory"
	"restaurant-advisor-be/pkg/advisor/orchestrator"
	"restaurant-advisor-be/pkg/advisor/permission"
	"restaurant-advisor-be/pkg/advisor/retrieval"
	"restaurant-advisor-be/pkg/advisor/router"
	"restaurant-advisor-be/pkg/advisor/specialist"
	"restaurant-advisor-be/pkg/embedding"
	"restaurant-advisor-be/pkg/kb"
	"restaurant-advisor-be/pkg/kg"
	"restaurant-advisor-be/pkg/llm/factory"
	pktNats "restaurant-advisor-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	AdvisorController   controller.IAdvisorController
	KnowledgeController controller.IKnowledgeController

	// Background services, run by main.go
	ArchiveConsumer service.IArchiveConsumerService

	// Exposed for shutdown hooks
	AdvisorService service.IAdvisorService
	Logger         logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 3. Providers
	embeddingProvider, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.EmbeddingModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
	}
	log.Printf("[INFO] Using embedding provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS publisher, auditing disabled: %v", err)
		natsPub = nil
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS subscriber, audit trail disabled: %v", err)
		natsSub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	cacheAvailable := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, retrieval cache disabled: %v", err)
		cacheAvailable = false
	}

	// 5. Advisor core
	fusionWeights := fusion.Weights{
		Location:   cfg.Advisor.WeightLocation,
		Uniqueness: cfg.Advisor.WeightUniqueness,
		Sentiment:  cfg.Advisor.WeightSentiment,
		Regulatory: cfg.Advisor.WeightRegulatory,
	}

	registry := specialist.NewRegistry()
	queryRouter := router.New(registry, cfg.Advisor.ContextTurns)

	permTable, err := permission.NewTable()
	if err != nil {
		log.Fatalf("[FATAL] Invalid permission matrix: %v", err)
	}

	buffers := repomemory.NewBufferRepository()
	persistence := service.NewMemoryPersistence(uowFactory)
	store, err := advisormemory.NewStore(
		persistence,
		buffers,
		pubSub,
		sysLogger,
		cfg.Advisor.BufferCapacity,
		cfg.Advisor.SessionTimeout,
	)
	if err != nil {
		log.Fatalf("[FATAL] Invalid memory configuration: %v", err)
	}

	kbService := kb.NewService(uowFactory, embeddingProvider, cfg.Advisor.SimilarityThreshold)
	kgService := kg.NewService(uowFactory)

	coordinatorOpts := []retrieval.Option{
		retrieval.WithSourceTimeout(cfg.Advisor.SourceTimeout),
		retrieval.WithSemanticWeight(cfg.Advisor.SemanticWeight),
		retrieval.WithLimit(cfg.Advisor.RetrievalLimit),
		retrieval.WithMaxDepth(cfg.Advisor.GraphMaxDepth),
	}
	if cacheAvailable {
		coordinatorOpts = append(coordinatorOpts, retrieval.WithCache(rdb, cfg.Advisor.CacheTTL))
	}
	coordinator, err := retrieval.NewCoordinator(kbService, kgService, sysLogger, coordinatorOpts...)
	if err != nil {
		log.Fatalf("[FATAL] Invalid retrieval configuration: %v", err)
	}

	executor := specialist.NewExecutor(llmProvider)

	directory := service.NewDirectory(uowFactory)
	orch, err := orchestrator.New(
		directory,
		queryRouter,
		permTable,
		store,
		coordinator,
		executor,
		sysLogger,
		orchestrator.WithFusionWeights(fusionWeights),
		orchestrator.WithContextTurns(cfg.Advisor.ContextTurns),
	)
	if err != nil {
		log.Fatalf("[FATAL] Invalid orchestrator configuration: %v", err)
	}

	// 6. Services
	advisorService := service.NewAdvisorService(
		orch,
		store,
		coordinator,
		permTable,
		registry,
		uowFactory,
		natsPub,
		fusionWeights,
		sysLogger,
	)
	authService := service.NewAuthService(uowFactory, cfg.Auth, natsPub, sysLogger)
	knowledgeService := service.NewKnowledgeService(kbService, uowFactory, natsPub, sysLogger)
	archiveConsumer := service.NewArchiveConsumerService(pubSub, natsPub)

	// Durable audit trail drained from JetStream into its own log file.
	if natsSub != nil {
		auditLogger := logger.NewZapLogger("logs/audit.log", cfg.App.Environment == "production")
		auditTrail := service.NewAuditTrailService(natsSub, auditLogger)
		go auditTrail.Start()
	}

	// 7. Controllers
	return &Container{
		AuthController:      controller.NewAuthController(authService),
		AdvisorController:   controller.NewAdvisorController(advisorService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		ArchiveConsumer:     archiveConsumer,
		AdvisorService:      advisorService,
		Logger:              sysLogger,
	}
}

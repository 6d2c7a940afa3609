package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hr_training_backend/internal/config"
	"hr_training_backend/internal/controller"
	"hr_training_backend/internal/repository"
	"hr_training_backend/internal/service"
	"hr_training_backend/pkg/database"
	"hr_training_backend/pkg/logger"
	"hr_training_backend/pkg/monitoring"
	"hr_training_backend/pkg/security"
	"hr_training_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	module     *repository.ModuleRepository
	enrollment *repository.EnrollmentRepository
	chat       *repository.ChatRepository
	assessment *repository.AssessmentRepository
	material   *repository.MaterialRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	storage    *service.StorageService
	agent      *service.AgentService
	module     *service.ModuleService
	enrollment *service.EnrollmentService
	qa         *service.QAService
	assessment *service.AssessmentService
	dashboard  *service.DashboardService
	material   *service.MaterialService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	module     *controller.ModuleController
	enrollment *controller.EnrollmentController
	qa         *controller.QAController
	assessment *controller.AssessmentController
	dashboard  *controller.DashboardController
	material   *controller.MaterialController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		module:     repository.NewModuleRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		chat:       repository.NewChatRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		material:   repository.NewMaterialRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	mirror := service.NewRedisMirror(rdb)

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.agent = service.NewAgentService(cfg.Agent)
	s.module = service.NewModuleService(repos.module, mirror)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.module, mirror)
	s.qa = service.NewQAService(repos.chat, repos.module, s.agent)
	s.assessment = service.NewAssessmentService(repos.module, repos.assessment, repos.enrollment, s.agent, mirror)
	s.dashboard = service.NewDashboardService(repos.user, repos.module, repos.enrollment)
	s.material = service.NewMaterialService(repos.material, repos.module, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		module:     controller.NewModuleController(s.module),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		qa:         controller.NewQAController(s.qa),
		assessment: controller.NewAssessmentController(s.assessment),
		dashboard:  controller.NewDashboardController(s.dashboard),
		material:   controller.NewMaterialController(s.material),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("hr-training-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	// 追踪器在服务停止后关闭，把缓冲中的span刷给采集器
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}

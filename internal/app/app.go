package app

import (
	"context"
	"log"
	"mindconnect_backend/internal/config"
	"mindconnect_backend/internal/controller"
	"mindconnect_backend/internal/repository"
	"mindconnect_backend/internal/service"
	"mindconnect_backend/pkg/database"
	"mindconnect_backend/pkg/logger"
	"mindconnect_backend/pkg/monitoring"
	"mindconnect_backend/pkg/security"
	"mindconnect_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	cron            *cron.Cron
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user          *repository.UserRepository
	profile       *repository.ProfileRepository
	questionnaire *repository.QuestionnaireRepository
	match         *repository.MatchRepository
	appointment   *repository.AppointmentRepository
	message       *repository.MessageRepository
}

type services struct {
	auth          *service.AuthService
	user          *service.UserService
	storage       *service.StorageService
	questionnaire *service.QuestionnaireService
	matching      *service.MatchingService
	appointment   *service.AppointmentService
	message       *service.MessageService
}

type controllers struct {
	auth          *controller.AuthController
	user          *controller.UserController
	questionnaire *controller.QuestionnaireController
	match         *controller.MatchController
	appointment   *controller.AppointmentController
	message       *controller.MessageController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// OnConfigReload is handed to the config watcher. Services read their
// settings through a.Config, so swapping the pointer is enough for most
// of them; callbacks cover the rest.
func (a *App) OnConfigReload(cfg *config.Config) {
	*a.Config = *cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		profile:       repository.NewProfileRepository(db),
		questionnaire: repository.NewQuestionnaireRepository(db),
		match:         repository.NewMatchRepository(db),
		appointment:   repository.NewAppointmentRepository(db),
		message:       repository.NewMessageRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.questionnaire = service.NewQuestionnaireService(repos.questionnaire)
	s.matching = service.NewMatchingService(repos.questionnaire, repos.profile, repos.match, rdb, cfg, logger.Log)
	s.auth = service.NewAuthService(repos.user, repos.profile, s.questionnaire, s.matching, cfg)
	s.user = service.NewUserService(repos.user, repos.profile, s.storage)
	s.appointment = service.NewAppointmentService(repos.appointment, s.matching)
	s.message = service.NewMessageService(repos.message, repos.user)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth, s.user),
		user:          controller.NewUserController(s.user),
		questionnaire: controller.NewQuestionnaireController(s.questionnaire, s.matching),
		match:         controller.NewMatchController(s.matching),
		appointment:   controller.NewAppointmentController(s.appointment),
		message:       controller.NewMessageController(s.message),
		health:        controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks schedules the nightly purge of anonymous
// questionnaire submissions past the retention window.
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	a.cron = cron.New()
	_, err := a.cron.AddFunc("0 3 * * *", func() {
		s.questionnaire.PurgeUnclaimed(cfg.Matching.UnclaimedRetentionDays)
	})
	if err != nil {
		logger.Log.Error("scheduling submission purge failed", zap.Error(err))
		return
	}
	a.cron.Start()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("logger initialized")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("mindconnect-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, cfg)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.cron != nil {
		a.cron.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

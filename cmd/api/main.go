package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/quest-api/internal/config"
	"github.com/yourusername/quest-api/internal/handler"
	"github.com/yourusername/quest-api/internal/middleware"
	"github.com/yourusername/quest-api/internal/notifier"
	pgRepo "github.com/yourusername/quest-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quest-api/internal/repository/redis"
	"github.com/yourusername/quest-api/internal/service"
	"github.com/yourusername/quest-api/internal/service/watcher"
	"github.com/yourusername/quest-api/pkg/auth"
	"github.com/yourusername/quest-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Контекст приложения: его отмена останавливает вотчеры
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	teamRepo := pgRepo.NewTeamRepo(db)
	memberRepo := pgRepo.NewMemberRepo(db)
	routeRepo := pgRepo.NewRouteRepo(db)
	proofRepo := pgRepo.NewProofRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Нотификатор: реальный бот или заглушка в лог
	var notify notifier.Notifier
	if cfg.Bot.Enabled {
		notify, err = notifier.NewTelegramNotifier(cfg.Bot.Token)
		if err != nil {
			log.Printf("Failed to initialize Telegram notifier: %v", err)
			os.Exit(1)
		}
	} else {
		log.Println("Бот выключен, уведомления уходят в лог")
		notify = notifier.NewLogNotifier()
	}

	// Вотчеры прогресса команд
	pollInterval := time.Duration(cfg.Game.PollIntervalSec) * time.Second
	watcherManager := watcher.NewManager(appCtx, teamRepo, memberRepo, routeRepo, notify, pollInterval)

	// Инициализируем сервисы
	routeService := service.NewRouteService(routeRepo, teamRepo)
	registrationService := service.NewRegistrationService(userRepo, teamRepo, memberRepo, routeService, cfg.Game.TeamSize)
	teamService := service.NewTeamService(teamRepo, memberRepo, userRepo, cfg.Game.TeamSize)
	gameService := service.NewGameService(teamRepo, memberRepo, userRepo, routeRepo, proofRepo, routeService, watcherManager, cfg.Game.TeamSize)
	proofService := service.NewProofService(proofRepo, teamRepo, memberRepo, userRepo, routeRepo, cfg.Game.ProofsDir)
	leaderboardService := service.NewLeaderboardService(
		teamRepo, proofRepo, routeRepo, cacheRepo,
		time.Duration(cfg.Game.LeaderboardCacheSec)*time.Second,
	)

	// Проверка подписи initData мини-приложения
	initDataVerifier := auth.NewInitDataVerifier(cfg.Bot.Token)

	// Инициализируем обработчики
	registrationHandler := handler.NewRegistrationHandler(registrationService, teamService)
	teamHandler := handler.NewTeamHandler(teamService)
	gameHandler := handler.NewGameHandler(gameService, proofService, teamService, leaderboardService)
	moderationHandler := handler.NewModerationHandler(proofService)
	routeHandler := handler.NewRouteHandler(routeService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
	webAppHandler := handler.NewWebAppHandler(initDataVerifier, teamService, gameService, leaderboardService)

	secretMiddleware := middleware.NewSecretMiddleware(cfg.Auth.AppSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://web.telegram.org", "http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "x-app-secret"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		// Служебная поверхность бота: общий секрет в заголовке
		secured := api.Group("/")
		secured.Use(secretMiddleware.RequireSecret())
		secured.Use(rateLimiter.Limit(middleware.DefaultAPIRateLimitConfig()))
		{
			secured.POST("/users/register", registrationHandler.Register)
			secured.POST("/participants/import", registrationHandler.ImportParticipants)
			secured.GET("/teams/by-tg/:tg_id", registrationHandler.TeamByTg)
			secured.GET("/teams/roster/by-tg/:tg_id", registrationHandler.RosterByTg)
			secured.POST("/teams/rename", teamHandler.Rename)

			secured.POST("/game/start", gameHandler.Start)
			secured.GET("/game/current/by-tg/:tg_id", gameHandler.CurrentByTg)
			secured.POST("/game/photo", gameHandler.SubmitProof)
			secured.POST("/game/submit-photo", gameHandler.SubmitProofFile)

			secured.GET("/leaderboard", leaderboardHandler.Get)

			// Админская поверхность (тот же секрет — бот-админка)
			admin := secured.Group("/admin")
			{
				admin.GET("/teams", teamHandler.ListTeams)
				admin.POST("/teams/lock", teamHandler.LockAll)
				admin.POST("/teams/unlock", teamHandler.UnlockAll)

				adminTeam := admin.Group("/teams/:id")
				adminTeam.Use(middleware.ExtractUintParam("id", "teamID"))
				{
					adminTeam.POST("/captain", teamHandler.SetCaptain)
					adminTeam.DELETE("/captain", teamHandler.UnsetCaptain)
					adminTeam.POST("/route", routeHandler.AssignRoute)
					adminTeam.GET("/summary", gameHandler.Summary)
				}
				admin.POST("/members/move", teamHandler.MoveMember)

				admin.GET("/routes", routeHandler.List)
				admin.POST("/routes", routeHandler.Create)
				adminRoute := admin.Group("/routes/:id")
				adminRoute.Use(middleware.ExtractUintParam("id", "routeID"))
				{
					adminRoute.GET("", routeHandler.Get)
					adminRoute.PUT("", routeHandler.Update)
					adminRoute.DELETE("", routeHandler.Delete)
					adminRoute.POST("/checkpoints", routeHandler.AddCheckpoint)
				}
				adminCheckpoint := admin.Group("/checkpoints/:id")
				adminCheckpoint.Use(middleware.ExtractUintParam("id", "checkpointID"))
				{
					adminCheckpoint.PUT("", routeHandler.UpdateCheckpoint)
					adminCheckpoint.DELETE("", routeHandler.RemoveCheckpoint)
				}

				admin.GET("/proofs/pending", moderationHandler.ListPending)
				adminProof := admin.Group("/proofs/:id")
				adminProof.Use(middleware.ExtractUintParam("id", "proofID"))
				{
					adminProof.POST("/approve", moderationHandler.Approve)
					adminProof.POST("/reject", moderationHandler.Reject)
				}

				admin.GET("/leaderboard/export", leaderboardHandler.Export)
				admin.POST("/reset", gameHandler.ResetProgress)
			}
		}

		// Мини-приложение: аутентификация подписью initData
		webapp := api.Group("/webapp")
		webapp.Use(rateLimiter.Limit(middleware.WebAppRateLimitConfig()))
		{
			webapp.POST("/summary", webAppHandler.Summary)
			webapp.POST("/start", webAppHandler.Start)
			webapp.POST("/leaderboard", webAppHandler.Leaderboard)
		}
	}

	// После перезапуска сервера возобновляем вотчеры стартовавших команд
	go func() {
		if err := watcherManager.Resume(); err != nil {
			log.Printf("Failed to resume watchers: %v", err)
		}
	}()

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем вотчеры
	cancel()
	watcherManager.StopAll()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"

	"photoshare-server/config"
	_ "photoshare-server/docs"
	"photoshare-server/internal/audit"
	"photoshare-server/internal/handler"
	"photoshare-server/internal/repository"
	"photoshare-server/internal/security"
	"photoshare-server/internal/service"
	"photoshare-server/internal/util"
)

// @title Photoshare-server
// @version 1.0
// @description REST API фотохостинга: сессии, ротация refresh токенов, вход через GitHub

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("Не удалось применить миграции: %v", err)
	}

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	jwtService, err := security.NewJWTService(&cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка конфигурации JWT: %v", err)
	}

	stateTTL, err := util.ParseTTL(cfg.OAuth.StateTTL, security.DefaultStateCookieTTL)
	if err != nil {
		log.Fatalf("Ошибка конфигурации oauth state TTL: %v", err)
	}

	limitWindow, err := util.ParseTTL(cfg.RateLimit.Window, time.Minute)
	if err != nil {
		log.Fatalf("Ошибка конфигурации rate limit: %v", err)
	}
	limitMax := cfg.RateLimit.Max
	if limitMax <= 0 {
		limitMax = 10
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	stateRepo := repository.NewOAuthStateRepository(redisClient, stateTTL)
	limiterRepo := repository.NewRateLimitRepository(redisClient, limitWindow, limitMax)

	cookieService := security.NewCookieService(&cfg.Cookies,
		jwtService.AccessTokenTTL(), jwtService.RefreshTokenTTL(), stateTTL)

	observer := buildObserver(&cfg.Webhook)

	authService := service.NewAuthenticationService(tokenRepo, userRepo, jwtService)
	oauthService := service.NewOAuthService(&cfg.OAuth.Github, userRepo, tokenRepo, jwtService, stateRepo, observer)
	userService := service.NewUserService(userRepo)

	authHandler := handler.NewAuthenticationHandler(authService, userService, cookieService, cfg.JWT.ReturnTokenInBody)
	oauthHandler := handler.NewOAuthHandler(oauthService, cookieService)
	userHandler := handler.NewUserHandler(userService)

	router.Use(security.RequestIDMiddleware)
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(router, authHandler, oauthHandler, jwtService, limiterRepo)
	setupAdminRoutes(router, authHandler, jwtService, userRepo)
	setupUserRoutes(router, userHandler)

	runServer(ctx, srv)
}

func buildObserver(cfg *config.WebhookConfig) audit.Observer {
	if cfg.URL == "" {
		return audit.NewLogObserver()
	}

	timeout, err := util.ParseTTL(cfg.Timeout, 5*time.Second)
	if err != nil {
		log.Printf("некорректный таймаут webhook, используется значение по умолчанию: %v", err)
		timeout = 5 * time.Second
	}

	return audit.MultiObserver{
		audit.NewLogObserver(),
		audit.NewWebhookObserver(cfg.URL, timeout),
	}
}

func setupAuthRoutes(
	r chi.Router,
	h *handler.AuthenticationHandler,
	oauthHandler *handler.OAuthHandler,
	jwtService *security.JWTService,
	limiter security.RateLimiter,
) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService))
			r.Get("/me", h.Me)
			r.Post("/logout-all", h.LogoutAll)
		})

		r.Group(func(r chi.Router) {
			r.Use(security.RateLimitMiddleware(limiter))
			r.Post("/refresh", h.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Post("/", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/github", oauthHandler.StartGithubAuth)
			r.Get("/github/callback", oauthHandler.GithubCallback)
		})
	})
}

func setupAdminRoutes(
	r chi.Router,
	h *handler.AuthenticationHandler,
	jwtService *security.JWTService,
	users security.UserFinder,
) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(security.AdminMiddleware(jwtService, users))
		r.Post("/sessions/cleanup", h.CleanupSessions)
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.RegisterUser)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}

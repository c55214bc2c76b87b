package main

import (
	"context"
	"crypto/rsa"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/4and4/milo-server/internal/application/auth"
	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/application/projects"
	"github.com/4and4/milo-server/internal/application/storage"
	"github.com/4and4/milo-server/internal/config"
	infraauth "github.com/4and4/milo-server/internal/infrastructure/auth"
	httprouter "github.com/4and4/milo-server/internal/infrastructure/http"
	"github.com/4and4/milo-server/internal/infrastructure/http/handlers"
	"github.com/4and4/milo-server/internal/infrastructure/http/middleware"
	"github.com/4and4/milo-server/internal/infrastructure/persistence/memory"
	"github.com/4and4/milo-server/internal/infrastructure/persistence/mongodb"
	"github.com/4and4/milo-server/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()

	var projectRepo ports.ProjectRepository
	var userRepo ports.UserRepository
	var pingStore func(ctx context.Context) error
	switch cfg.Server.Store {
	case "memory":
		log.Warn().Msg("using in-memory store; projects will not survive restarts")
		projectRepo = memory.NewProjectRepository()
		userRepo = memory.NewUserRepository()
	default:
		client, err := mongodb.Connect(ctx, cfg.Mongo.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to mongodb")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		db := client.Database(cfg.Mongo.Database)
		projectRepo, err = mongodb.NewProjectRepository(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("init project repository")
		}
		userRepo, err = mongodb.NewUserRepository(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("init user repository")
		}
		pingStore = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	var privateKey *rsa.PrivateKey
	pemBytes, err := cfg.LoadJWTPrivateKey()
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT private key")
	}
	if pemBytes != nil {
		privateKey, err = infraauth.LoadRSAPrivateKeyFromPEM(pemBytes)
		if err != nil {
			log.Fatal().Err(err).Msg("parse JWT private key")
		}
	} else {
		log.Warn().Msg("JWT_PRIVATE_KEY_PATH unset; generating an ephemeral signing key")
		privateKey, err = infraauth.GenerateEphemeralKey()
		if err != nil {
			log.Fatal().Err(err).Msg("generate signing key")
		}
	}
	issuer := infraauth.NewTokenIssuer(privateKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	registerUC := appauth.NewRegisterUser(userRepo, hasher)
	loginUC := appauth.NewLogin(userRepo, hasher, issuer, cfg.JWT.AccessExpiry)
	oauthUC := appauth.NewOAuthSignIn(userRepo, issuer, cfg.JWT.AccessExpiry)
	saveUC := storage.NewSaveProject(projectRepo)
	loadUC := storage.NewLoadProject(projectRepo)
	listUC := projects.NewListProjects(projectRepo)
	updateUC := projects.NewUpdateProject(projectRepo, userRepo)

	handlers.InitOAuthProviders(cfg.OAuth.CallbackBaseURL, cfg.OAuth.SessionSecret, cfg.OAuth.Google.ClientID, cfg.OAuth.Google.ClientSecret)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	userLimit, err := middleware.NewUserRateLimiter(cfg.RateLimit.RatePerUser)
	if err != nil {
		log.Fatal().Err(err).Msg("create user rate limiter")
	}

	router := httprouter.NewRouter(httprouter.RouterConfig{
		StorageHandler:  handlers.NewStorageHandler(saveUC, loadUC, log),
		ProjectsHandler: handlers.NewProjectsHandler(listUC, updateUC, log),
		AuthHandler:     handlers.NewAuthHandler(registerUC, loginUC, log),
		HealthHandler:   handlers.NewHealthHandler(pingStore),
		Identity:        middleware.NewIdentity(issuer),
		OAuthBegin:      handlers.OAuthBegin(),
		OAuthCallback:   handlers.OAuthCallback(oauthUC, cfg.OAuth.RedirectURL),
		Logout:          handlers.Logout(cfg.OAuth.RedirectURL),
		Log:             log,
		Secure:          middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment)),
		CORS:            middleware.CORS(cfg.CORS.AllowedOrigins),
		IPRateLimit:     ipLimit,
		UserRateLimit:   userLimit,
		Metrics:         true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}

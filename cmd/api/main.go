// Package main is the entrypoint for the Saucier API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/saucier/saucier/internal/cache"
	"github.com/saucier/saucier/internal/config"
	"github.com/saucier/saucier/internal/handler"
	"github.com/saucier/saucier/internal/middleware"
	"github.com/saucier/saucier/internal/repository"
	"github.com/saucier/saucier/internal/server"
	"github.com/saucier/saucier/internal/service"
	"github.com/saucier/saucier/internal/storage"
	"github.com/saucier/saucier/internal/validation"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	images, err := storage.New(cfg.MediaRoot)
	if err != nil {
		logger.Error("failed to initialize media storage",
			slog.String("error", err.Error()),
			slog.String("media_root", cfg.MediaRoot),
		)
		os.Exit(1)
	}

	// Services
	userService := service.NewUserService(repo)
	recipeService := service.NewRecipeService(repo, images)
	taxonomyService := service.NewTaxonomyService(repo)

	// Handlers
	validate := validation.New()
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	userHandler := handler.NewUserHandler(userService, validate, logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, validate, cfg.BaseURL, logger)
	taxonomyHandler := handler.NewTaxonomyHandler(taxonomyService, validate, logger)

	r := setupRouter(h, healthHandler, userHandler, recipeHandler, taxonomyHandler, repo, cacheClient, images, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	userHandler *handler.UserHandler,
	recipeHandler *handler.RecipeHandler,
	taxonomyHandler *handler.TaxonomyHandler,
	repo *repository.Repository,
	cacheClient *cache.Cache,
	images *storage.Store,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: repo,
		Cache:  cacheClient,
	}

	jsonBody := middleware.MaxBodySize(cfg.MaxRequestBodySize)
	imageBody := middleware.MaxBodySize(cfg.MaxImageBytes)

	r.Route("/api/v1", func(r chi.Router) {
		// Public account endpoints
		r.With(jsonBody).Post("/users", userHandler.Register)
		r.With(jsonBody).Post("/users/token", userHandler.Token)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Route("/users/me", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", userHandler.Me)
				r.With(middleware.RequireWrite(), jsonBody).Patch("/", userHandler.UpdateMe)
			})

			r.Route("/recipes", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", recipeHandler.List)
				r.With(middleware.RequireRead()).Get("/{id}", recipeHandler.Get)
				r.With(middleware.RequireWrite(), jsonBody).Post("/", recipeHandler.Create)
				r.With(middleware.RequireWrite(), jsonBody).Patch("/{id}", recipeHandler.Update)
				r.With(middleware.RequireWrite(), jsonBody).Put("/{id}", recipeHandler.Update)
				r.With(middleware.RequireWrite()).Delete("/{id}", recipeHandler.Delete)
				r.With(middleware.RequireWrite(), imageBody).Post("/{id}/image", recipeHandler.UploadImage)
			})

			r.Route("/tags", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", taxonomyHandler.ListTags)
				r.With(middleware.RequireWrite(), jsonBody).Patch("/{id}", taxonomyHandler.UpdateTag)
				r.With(middleware.RequireWrite()).Delete("/{id}", taxonomyHandler.DeleteTag)
			})

			r.Route("/ingredients", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", taxonomyHandler.ListIngredients)
				r.With(middleware.RequireWrite(), jsonBody).Patch("/{id}", taxonomyHandler.UpdateIngredient)
				r.With(middleware.RequireWrite()).Delete("/{id}", taxonomyHandler.DeleteIngredient)
			})
		})
	})

	// Uploaded images are served from the media root.
	fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(images.Root())))
	r.Get("/media/*", fileServer.ServeHTTP)

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"go-user-admin/internal/auth"
	"go-user-admin/internal/config"
	"go-user-admin/internal/database"
	"go-user-admin/internal/handler"
	"go-user-admin/internal/lockout"
	"go-user-admin/internal/middleware"
	"go-user-admin/internal/repository"
	"go-user-admin/internal/router"
	"go-user-admin/internal/service"
)

// Mode selects which of the two services an App serves.
type Mode string

const (
	ModeAPI   Mode = "api"
	ModeAdmin Mode = "admin"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New(mode Mode) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewPostgresUserRepository(pool)
	groupRepo := repository.NewPostgresGroupRepository(pool)
	slog.Info("database ready")

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	codec := auth.NewCodec(cfg.JWTSecret, cfg.JWTAccessTTL)

	cleanupFuncs := []func(){db.Close}

	var locks lockout.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		locks = lockout.NewRedisStore(rdb, cfg.LockoutMax, cfg.LockoutWindow, cfg.LockoutDuration)
		cleanupFuncs = append(cleanupFuncs, func() {
			_ = rdb.Close()
		})
		slog.Info("using Redis lockout store", "addr", cfg.RedisAddr)
	} else {
		locks = lockout.NewMemoryStore(cfg.LockoutMax, cfg.LockoutWindow, cfg.LockoutDuration)
	}

	authService := service.NewAuthService(userRepo, hasher, codec, locks)
	userService := service.NewUserService(userRepo, hasher)
	groupService := service.NewGroupService(groupRepo, userRepo)

	if err := userService.EnsureInitialAdmin(context.Background(), cfg.InitialAdminUsername, cfg.InitialAdminPassword); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed initial admin: %w", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)
	handlers := router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		User:   handler.NewUserHandler(userService),
		Group:  handler.NewGroupHandler(groupService),
		Import: handler.NewImportHandler(userService),
	}

	var appRouter http.Handler
	var port string
	switch mode {
	case ModeAdmin:
		appRouter = router.NewAdmin(cfg, authMiddleware, handlers)
		port = cfg.AdminPort
	default:
		appRouter = router.NewPublic(cfg, authMiddleware, handlers)
		port = cfg.APIPort
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		db:           db,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}

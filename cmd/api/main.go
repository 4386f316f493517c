package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/campuskit/forum-service/internal/api/http"
	"github.com/campuskit/forum-service/internal/api/http/handlers"
	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/cache"
	"github.com/campuskit/forum-service/internal/config"
	"github.com/campuskit/forum-service/internal/counter"
	"github.com/campuskit/forum-service/internal/events"
	"github.com/campuskit/forum-service/internal/observability"
	"github.com/campuskit/forum-service/internal/persistence"
	"github.com/campuskit/forum-service/internal/repository"
	"github.com/campuskit/forum-service/internal/service"
	"github.com/campuskit/forum-service/internal/session"
	"github.com/campuskit/forum-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient := persistence.NewRedisClient(cfg.Redis, logger)
	defer redisClient.Close()
	store := cache.NewRedisCache(redisClient)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	likeRepo := repository.NewLikeRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL())
	dispatcher := events.NewInMemoryDispatcher()

	registry := session.NewRegistry(store, userRepo, tokens, dispatcher, logger, session.Config{
		RefreshTTL:   cfg.Auth.RefreshTokenTTL(),
		RoleCacheTTL: cfg.Auth.RoleCacheTTL(),
	})

	views := counter.NewViews(store)
	ranker := counter.NewHotRanker(store, postRepo, logger, cfg.Counter.HotSetTTL(), cfg.Counter.HotListSize)
	reconciler := counter.NewReconciler(store, postRepo, ranker, logger, cfg.Counter.ReconcileInterval())
	go reconciler.Run(ctx)

	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: commentRepo,
		PostRepo:    postRepo,
		UserRepo:    userRepo,
		LikeRepo:    likeRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	postService := service.NewPostService(service.PostDependencies{
		PostRepo:     postRepo,
		CategoryRepo: categoryRepo,
		UserRepo:     userRepo,
		LikeRepo:     likeRepo,
		Comments:     commentService,
		Views:        views,
		Ranker:       ranker,
		HotListSize:  cfg.Counter.HotListSize,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: userRepo,
		Registry: registry,
		Cache:    store,
		Logger:   logger,
	})
	userService := service.NewUserService(userRepo, registry, cfg.Auth.BcryptCost)
	adminService := service.NewAdminService(service.AdminDependencies{
		UserRepo:   userRepo,
		PostRepo:   postRepo,
		Comments:   commentService,
		Registry:   registry,
		Dispatcher: dispatcher,
	})

	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	metrics := observability.NewMetrics()
	authMiddleware := auth.NewMiddleware(registry)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, store),
		Auth:           handlers.NewAuthHandler(authService),
		Posts:          handlers.NewPostsHandler(postService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Users:          handlers.NewUsersHandler(userService),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Raiyan-S/GP-Dashboard/internal/config"
	"github.com/Raiyan-S/GP-Dashboard/internal/jobs/cleanup"
	mongorepo "github.com/Raiyan-S/GP-Dashboard/internal/repo/mongo"
	redrepo "github.com/Raiyan-S/GP-Dashboard/internal/repo/redis"
	authsvc "github.com/Raiyan-S/GP-Dashboard/internal/services/auth"
	metricssvc "github.com/Raiyan-S/GP-Dashboard/internal/services/metrics"
	predictsvc "github.com/Raiyan-S/GP-Dashboard/internal/services/predict"
	ratesvc "github.com/Raiyan-S/GP-Dashboard/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	mongo      *mongodriver.Database
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.CORS.AllowedOrigins)

	db, err := mongorepo.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, fmt.Errorf("open mongo: %w", err)
	}
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure mongo indexes: %w", err)
	}

	var redisClient *goredis.Client
	var loginLimiter *ratesvc.LoginLimiter
	if cfg.Redis.Addr != "" {
		redisClient = redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		loginLimiter = ratesvc.NewLoginLimiter(redrepo.NewRateRepo(redisClient), cfg.RateLimit.LoginPerMinute)
	} else {
		log.Warn("redis addr not configured, login rate limiting disabled")
	}

	userRepo := mongorepo.NewUserRepo(db)
	sessionRepo := mongorepo.NewSessionRepo(db)
	roundRepo := mongorepo.NewRoundRepo(db)
	checkpointRepo := mongorepo.NewCheckpointRepo(db)
	predictionRepo := mongorepo.NewPredictionRepo(db)

	authService := authsvc.NewService(userRepo, sessionRepo, cfg.Auth.SessionTTL, cfg.Auth.RefreshWindow)
	metricsService := metricssvc.NewService(roundRepo)
	predictService := predictsvc.NewService(checkpointRepo, predictionRepo, predictsvc.Config{
		ModelName: cfg.Model.Name,
		Classes:   cfg.Model.Classes,
		InputSize: cfg.Model.InputSize,
	})

	cleanupJob := cleanup.NewSessionCleanupJob(sessionRepo, log)
	go func() {
		if err := cleanupJob.RunLoop(ctx, cfg.Auth.CleanupInterval); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("session cleanup loop failed", zap.Error(err))
		}
	}()

	RegisterRoutes(r, Dependencies{
		AuthService:    authService,
		MetricsService: metricsService,
		PredictService: predictService,
		LoginLimiter:   loginLimiter,
		Logger:         log,
		Config:         cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		mongo:      db,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.mongo != nil {
		if err := a.mongo.Client().Disconnect(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

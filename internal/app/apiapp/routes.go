package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Raiyan-S/GP-Dashboard/internal/config"
	authsvc "github.com/Raiyan-S/GP-Dashboard/internal/services/auth"
	metricssvc "github.com/Raiyan-S/GP-Dashboard/internal/services/metrics"
	predictsvc "github.com/Raiyan-S/GP-Dashboard/internal/services/predict"
	ratesvc "github.com/Raiyan-S/GP-Dashboard/internal/services/rate"
	"github.com/Raiyan-S/GP-Dashboard/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService    *authsvc.Service
	MetricsService *metricssvc.Service
	PredictService *predictsvc.Service
	LoginLimiter   *ratesvc.LoginLimiter
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService, handlers.CookieConfig{
		Name:   deps.Config.Auth.CookieName,
		Secure: deps.Config.Auth.CookieSecure,
		TTL:    deps.Config.Auth.SessionTTL,
	})
	roundsHandler := handlers.NewRoundsHandler(deps.MetricsService)
	predictHandler := handlers.NewPredictHandler(deps.PredictService)

	authMW := AuthMiddleware(deps.AuthService, deps.Config.Auth.CookieName, deps.Logger)
	adminMW := RequireRole("admin")
	clinicMW := RequireRole("clinic")
	anyRoleMW := RequireRole("admin", "clinic")
	loginRateMW := LoginRateLimit(deps.LoginLimiter, deps.Logger)

	r.Get("/health", healthHandler.Handle)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.With(loginRateMW).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(authMW).Get("/verify-token", authHandler.VerifyToken)
		r.With(authMW, adminMW).Get("/dashboard", authHandler.Dashboard)
		r.With(authMW, adminMW).Get("/clients", authHandler.Clients)
		r.With(authMW, clinicMW).Get("/model-trial", authHandler.ModelTrial)
	})

	r.Route("/api/performance", func(r chi.Router) {
		r.Use(authMW, adminMW)
		r.Get("/", roundsHandler.List)
		r.Post("/", roundsHandler.Create)
		r.Get("/stats", roundsHandler.Stats)
		r.Get("/round/{roundID}", roundsHandler.Get)
		r.Delete("/round/{roundID}", roundsHandler.Delete)
	})

	r.Route("/api/predict", func(r chi.Router) {
		r.Use(authMW, anyRoleMW)
		r.Post("/", predictHandler.Predict)
		r.Get("/history", predictHandler.History)
	})
}

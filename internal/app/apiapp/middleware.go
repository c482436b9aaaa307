package apiapp

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	authsvc "github.com/Raiyan-S/GP-Dashboard/internal/services/auth"
	ratesvc "github.com/Raiyan-S/GP-Dashboard/internal/services/rate"
	httperrors "github.com/Raiyan-S/GP-Dashboard/internal/transport/http/errors"
)

func ApplyMiddlewares(r chiRouter, log *zap.Logger, allowedOrigins []string) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(requestLogger(log))
}

// AuthMiddleware resolves the session cookie to a user and attaches the
// identity to the request context. Every failure mode answers the same
// 401 so the response does not reveal whether a token ever existed.
func AuthMiddleware(authService *authsvc.Service, cookieName string, log *zap.Logger) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = "session_token"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authService == nil {
				httperrors.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				httperrors.WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			user, err := authService.CurrentUser(r.Context(), cookie.Value)
			if err != nil {
				if log != nil {
					log.Debug("auth middleware validation failed", zap.Error(err))
				}
				httperrors.WriteDetail(w, http.StatusUnauthorized, "Session expired or invalid")
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{
				UserID:   user.ID.Hex(),
				Username: user.Username,
				Role:     user.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to the listed roles. Must run after
// AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := authsvc.IdentityFromContext(r.Context())
			if !ok {
				httperrors.WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			for _, role := range roles {
				if strings.EqualFold(string(identity.Role), role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			httperrors.WriteDetail(w, http.StatusForbidden, "Not enough permissions")
		})
	}
}

// LoginRateLimit throttles the wrapped endpoint per client IP. A nil
// limiter disables the check.
func LoginRateLimit(limiter *ratesvc.LoginLimiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter, allowed, err := limiter.AllowLogin(r.Context(), clientIP(r))
			if err != nil {
				if log != nil {
					log.Error("login rate limiter failed", zap.Error(err))
				}
				httperrors.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !allowed {
				if retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				}
				httperrors.WriteDetail(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}

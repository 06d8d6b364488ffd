package middleware

import (
	"net/http"
	"strings"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys for authenticated request state
const (
	ActorKey      = "actor"
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthMiddlewareConfig holds configuration for the JWT auth middleware
type AuthMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// AccessProvider refreshes a telemarketer's delegations when the token
	// carries none. Optional.
	AccessProvider identity.AccessProvider
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAuthConfig returns default auth middleware configuration
func DefaultAuthConfig(jwtService *auth.JWTService) AuthMiddlewareConfig {
	return AuthMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/api/v1/health",
		},
	}
}

// AuthMiddleware creates JWT authentication middleware with default config
func AuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return AuthMiddlewareWithConfig(DefaultAuthConfig(jwtService))
}

// AuthMiddlewareWithConfig validates the bearer token, resolves the acting
// identity, and stores it in the request context for handlers.
func AuthMiddlewareWithConfig(cfg AuthMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("token validation failed", zap.Error(err))
			}
			abortUnauthorized(c, authErrorMessage(err))
			return
		}

		actor, err := claims.Actor()
		if err != nil {
			abortUnauthorized(c, "Token does not identify a valid actor")
			return
		}

		// Tokens issued before a delegation change may carry a stale empty
		// list; the access provider holds the current assignments.
		if actor.Role == identity.RoleTelemarketer && len(actor.Delegations) == 0 && cfg.AccessProvider != nil {
			if sellers, derr := cfg.AccessProvider.DelegatedSellers(c.Request.Context(), actor.UserID); derr == nil {
				actor = actor.WithDelegations(sellers)
			} else if cfg.Logger != nil {
				cfg.Logger.Warn("delegation lookup failed",
					zap.String("user_id", actor.UserID.String()),
					zap.Error(derr))
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(ActorKey, actor)
		c.Next()
	}
}

// ActorFromContext returns the authenticated actor stored by the auth middleware
func ActorFromContext(c *gin.Context) (identity.Actor, bool) {
	v, exists := c.Get(ActorKey)
	if !exists {
		return identity.Actor{}, false
	}
	actor, ok := v.(identity.Actor)
	return actor, ok
}

func authErrorMessage(err error) string {
	switch err {
	case auth.ErrExpiredToken:
		return "Token has expired"
	case auth.ErrTokenNotYetValid:
		return "Token is not valid yet"
	default:
		return "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse(dto.CodeUnauthorized, message))
}

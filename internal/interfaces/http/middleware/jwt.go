package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/infrastructure/auth"
	"github.com/erp/receivables/internal/infrastructure/logger"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// AuthHeaderKey is the header carrying the access token
	AuthHeaderKey = "Authorization"
	// BearerPrefix prefixes the token in the Authorization header
	BearerPrefix = "Bearer "

	// JWTClaimsKey is the gin context key of the validated claims
	JWTClaimsKey = "jwt_claims"
	// JWTUserIDKey is the gin context key of the caller's user ID
	JWTUserIDKey = "jwt_user_id"
	// ActorKey is the gin context key of the caller identity
	ActorKey = "actor"
)

// TokenValidator validates access tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// Validator checks the bearer token
	Validator TokenValidator
	// SkipPaths are exact paths that do not need a token
	SkipPaths []string
	// SkipPrefixes are path prefixes that do not need a token
	SkipPrefixes []string
	// Logger for authentication failures (optional)
	Logger *zap.Logger
}

// JWTAuthMiddleware requires a valid bearer token on every request outside
// SkipPaths and stores the caller identity in the gin context.
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.skips(c.Request.URL.Path) {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Authorization header missing or malformed")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Bearer token is empty")
			return
		}

		claims, err := cfg.Validator.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}
		actor, err := claims.Actor()
		if err != nil {
			handleAuthError(c, cfg, err, "Token carries no usable user_id")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(ActorKey, actor)

		ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func (cfg JWTMiddlewareConfig) skips(path string) bool {
	return skipPath(path, cfg.SkipPaths, cfg.SkipPrefixes)
}

// handleAuthError answers 401 with the code matching the validation failure
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingUserID):
		code, msg = dto.ErrCodeTokenInvalid, "Token claims are invalid"
	case errors.Is(err, auth.ErrInvalidToken) && c.GetHeader(AuthHeaderKey) != "":
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetActor retrieves the caller identity set by JWTAuthMiddleware
func GetActor(c *gin.Context) (appreceivable.Actor, bool) {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(appreceivable.Actor); ok {
			return actor, true
		}
	}
	return appreceivable.Actor{}, false
}

// RequireRole lets the request through only when the caller holds one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if slices.ContainsFunc(actor.Roles, func(r string) bool { return slices.Contains(roles, r) }) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID("FORBIDDEN", "Role "+strings.Join(roles, " or ")+" required", GetRequestID(c)))
	}
}

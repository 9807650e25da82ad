package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/betoojeda/tienda-facil/internal/http/response"
	"github.com/betoojeda/tienda-facil/internal/pkg/ctxutil"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/platform/apierr"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth accepts only an Authorization: Bearer header.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return am.authenticate(false)
}

// RequireAuthSSE also accepts ?token= for EventSource, which cannot set
// headers. Mount it on stream routes only.
func (am *AuthMiddleware) RequireAuthSSE() gin.HandlerFunc {
	return am.authenticate(true)
}

func (am *AuthMiddleware) authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" && allowQuery {
			tokenString = strings.TrimSpace(c.Query("token"))
		}
		if tokenString == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			ae := apierr.From(err, "unauthorized")
			status := ae.Status
			if status >= http.StatusInternalServerError {
				am.log.Error("Token check failed", "error", err)
			} else {
				status = http.StatusUnauthorized
			}
			response.AbortError(c, status, ae.Code, err.Error())
			return
		}
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			response.AbortError(c, http.StatusForbidden, "forbidden", "forbidden")
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole admits only callers whose session role is one of roles.
// It must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", "not authenticated")
			return
		}
		for _, r := range roles {
			if rd.Role == r {
				c.Next()
				return
			}
		}
		response.AbortError(c, http.StatusForbidden, "role_forbidden", "role not allowed")
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mediavault/content-repository/api/controller"
	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/util/tokenutil"
)

const actorKey = "x-actor"

// JwtAuthMiddleware 写接口必须携带 Bearer 令牌，解析出的用户放入上下文
func JwtAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			controller.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized")
			return
		}

		actor, err := tokenutil.ExtractActor(strings.TrimSpace(token), secret)
		if err != nil {
			controller.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFromContext 未认证的请求返回 nil
func ActorFromContext(c *gin.Context) *domain.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*domain.Actor)
	return actor
}

package api

import (
	"errors"
	"net/http"
	"strings"

	"ShipRank/internal/model"
	"ShipRank/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const currentUserKey = "current_user"

// RequireLogin 登录中间件。身份由外部登录系统签发 api_key，
// 这里按 Authorization: Bearer <api_key>（或 X-Api-Key）解析当前用户。
func RequireLogin(users repository.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var apiKey string
		// Authorization 头必须带 Bearer 方案，不带方案的裸密钥不认
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			apiKey = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		if apiKey == "" {
			apiKey = c.GetHeader("X-Api-Key")
		}
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		user, err := users.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
				return
			}
			logger.WithError(err).Error("解析当前用户失败")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser 取出中间件放入的当前用户，仅在 RequireLogin 之后的 handler 里调用
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(currentUserKey); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

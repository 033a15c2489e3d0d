package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/delivery-admin/pkg/response"
)

const (
	TokenCookie = "admin_token"
	StaffKey    = "staff"
)

// TokenVerifier 校验 token 并返回用户名
type TokenVerifier interface {
	Enabled() bool
	Verify(token string) (string, error)
}

// Auth 未开启鉴权时直接放行；API 返回 401，页面跳转到登录页
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !v.Enabled() {
			c.Next()
			return
		}
		staff, err := v.Verify(bearer(c))
		if err != nil {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				response.Unauthorized(c, "unauthorized")
				return
			}
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(StaffKey, staff)
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	token, _ := c.Cookie(TokenCookie)
	return token
}

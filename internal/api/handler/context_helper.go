package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nourhan03/Physics-Lab-P2/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetTokenInfo 从 Gin 上下文中提取当前令牌的 jti 与过期时间。
func MustGetTokenInfo(c *gin.Context) (string, time.Time, bool) {
	jtiVal, exists := c.Get("token_jti")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	jti, ok := jtiVal.(string)
	if !ok || jti == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}

	var exp time.Time
	if expVal, exists := c.Get("token_exp"); exists {
		if t, ok := expVal.(time.Time); ok {
			exp = t
		}
	}
	return jti, exp, true
}

package middleware

import (
	"VoteFight/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// CheckStaff 检查当前用户是否为管理员
func CheckStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_staff") {
			response.Fail(c, response.Forbidden, "权限不足：无权访问该资源")
			c.Abort()
			return
		}

		c.Next()
	}
}

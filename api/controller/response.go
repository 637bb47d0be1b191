package controller

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse 统一错误响应
func ErrorResponse(ctx *gin.Context, status int, code string, message string) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// SuccessResponse 统一成功响应，key 为数据字段名
func SuccessResponse(ctx *gin.Context, key string, data interface{}, count int) {
	ctx.JSON(200, gin.H{
		key:     data,
		"count": count,
	})
}

package middleware

import (
	"lingo_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LearnerMiddleware 从路径解析学习者 ID。身份认证由上游网关负责，这里只做格式校验
func LearnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		learnerID, ok := util.ParseID(c.Param("learnerId"))
		if !ok {
			util.FlatError(c, http.StatusBadRequest, util.ErrInvalidLearner.Error(), c.Param("learnerId"))
			c.Abort()
			return
		}

		c.Set(util.ContextLearnerKey, learnerID)
		c.Next()
	}
}

// GetLearnerFromContext 未经过 LearnerMiddleware 时返回 0
func GetLearnerFromContext(c *gin.Context) uint {
	v, exists := c.Get(util.ContextLearnerKey)
	if !exists {
		return 0
	}
	id, ok := v.(uint)
	if !ok {
		return 0
	}
	return id
}

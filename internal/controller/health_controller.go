package controller

import (
	"ai_teaching_backend/internal/service"
	"ai_teaching_backend/internal/util"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
	Hub   *service.GraphHub
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, hub *service.GraphHub) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Hub: hub}
}

// @Summary 健康检查
// @Description 检查数据库和缓存状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{"database": "up", "cache": "memory"}
	if c.Redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
		defer cancel()
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			components["cache"] = "down"
		} else {
			components["cache"] = "redis"
		}
	}

	data := gin.H{
		"status":     "ok",
		"components": components,
	}
	if c.Hub != nil {
		data["graphSessions"] = c.Hub.Count()
	}
	util.Success(ctx, data)
}

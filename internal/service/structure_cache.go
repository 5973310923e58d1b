package service

import (
	"ai_teaching_backend/pkg/cache"
	"ai_teaching_backend/pkg/logger"
	"ai_teaching_backend/pkg/monitoring"
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	chaptersKeyPrefix        = "graph:chapters:"
	knowledgePointsKeyPrefix = "graph:kps:"
)

// StructureCache 缓存课程的章节和知识点结构，课程内容变更时失效
type StructureCache struct {
	Cache cache.Cache
	TTL   time.Duration
}

func NewStructureCache(c cache.Cache, ttl time.Duration) *StructureCache {
	return &StructureCache{Cache: c, TTL: ttl}
}

// fetchCached 命中缓存直接返回，否则调用 load 并回写。缓存故障只记日志
func fetchCached[T any](ctx context.Context, s *StructureCache, key string, load func() (T, error)) (T, error) {
	var v T
	if s != nil {
		hit, err := s.Cache.Get(ctx, key, &v)
		if err != nil {
			logger.Log.Warn("读取结构缓存失败", zap.String("key", key), zap.Error(err))
		}
		if hit {
			monitoring.CacheLookups.WithLabelValues("hit").Inc()
			return v, nil
		}
		monitoring.CacheLookups.WithLabelValues("miss").Inc()
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if s != nil {
		if err := s.Cache.Set(ctx, key, v, s.TTL); err != nil {
			logger.Log.Warn("写入结构缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

// Invalidate 课程结构变化后调用
func (s *StructureCache) Invalidate(ctx context.Context, courseID string) {
	if s == nil || courseID == "" {
		return
	}
	if err := s.Cache.Delete(ctx, chaptersKeyPrefix+courseID, knowledgePointsKeyPrefix+courseID); err != nil {
		logger.Log.Warn("清除结构缓存失败", zap.String("courseId", courseID), zap.Error(err))
	}
}

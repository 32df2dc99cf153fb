package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yihuban/yihuban/internal/config"
	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/logger"
	"github.com/yihuban/yihuban/pkg/model"
)

const (
	resultKeyPrefix = "schedule:result:"
	runKeyPrefix    = "schedule:run:"
)

// ResultCache 排班结果缓存
// 以请求指纹为键缓存优化结果，并用 SetNX 锁保证同一指纹同时只有一次运行
type ResultCache struct {
	client    *redis.Client
	resultTTL time.Duration
	lockTTL   time.Duration
}

// NewResultCache 创建结果缓存
func NewResultCache(cfg *config.Config) *ResultCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return &ResultCache{
		client:    client,
		resultTTL: time.Duration(cfg.Redis.ResultTTL) * time.Second,
		lockTTL:   time.Duration(cfg.Redis.RunLockTTL) * time.Second,
	}
}

// Get 查询指纹对应的缓存结果
func (c *ResultCache) Get(ctx context.Context, fingerprint string) (*model.OptimizedSchedule, bool, error) {
	data, err := c.client.Get(ctx, resultKeyPrefix+fingerprint).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.Wrap(err, apperrors.CodeCacheError, "读取缓存失败")
	}

	result := &model.OptimizedSchedule{}
	if err := json.Unmarshal(data, result); err != nil {
		// 缓存损坏按未命中处理，重新计算覆盖
		logger.Warn().Str("fingerprint", fingerprint).Err(err).Msg("缓存结果损坏，忽略")
		return nil, false, nil
	}
	return result, true, nil
}

// Set 写入优化结果
func (c *ResultCache) Set(ctx context.Context, fingerprint string, result *model.OptimizedSchedule) error {
	data, err := json.Marshal(result)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "结果序列化失败")
	}
	if err := c.client.Set(ctx, resultKeyPrefix+fingerprint, data, c.resultTTL).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "写入缓存失败")
	}
	return nil
}

// AcquireRun 尝试获取指纹的运行锁
// 返回 false 表示同一指纹的运行正在进行，调用方应等待或直接复用其结果
func (c *ResultCache) AcquireRun(ctx context.Context, fingerprint string) (bool, error) {
	ok, err := c.client.SetNX(ctx, runKeyPrefix+fingerprint, 1, c.lockTTL).Result()
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeCacheError, "获取运行锁失败")
	}
	return ok, nil
}

// ReleaseRun 释放运行锁
func (c *ResultCache) ReleaseRun(ctx context.Context, fingerprint string) error {
	if err := c.client.Del(ctx, runKeyPrefix+fingerprint).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "释放运行锁失败")
	}
	return nil
}

// Close 关闭客户端
func (c *ResultCache) Close() error {
	return c.client.Close()
}

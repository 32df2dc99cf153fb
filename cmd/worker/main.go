// YiHuBan 排班引擎 worker
// 从队列消费排班任务并执行优化流水线

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yihuban/yihuban/internal/cache"
	"github.com/yihuban/yihuban/internal/config"
	"github.com/yihuban/yihuban/internal/database"
	"github.com/yihuban/yihuban/internal/metrics"
	"github.com/yihuban/yihuban/internal/notify"
	"github.com/yihuban/yihuban/internal/queue"
	"github.com/yihuban/yihuban/internal/worker"
	"github.com/yihuban/yihuban/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Format: "console",
	})

	fmt.Printf("YiHuBan 排班引擎 worker v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	db, err := database.New(cfg)
	if err != nil {
		logger.WithError(err).Msg("连接数据库失败")
		os.Exit(1)
	}
	defer db.Close()

	resultCache := cache.NewResultCache(cfg)
	defer resultCache.Close()

	jobs, err := queue.NewRabbitMQQueue(cfg)
	if err != nil {
		logger.WithError(err).Msg("连接 RabbitMQ 失败")
		os.Exit(1)
	}
	defer jobs.Close()

	var notifier notify.Dispatcher
	if cfg.SMTP.Enabled {
		mailer, err := notify.NewMailDispatcher(cfg)
		if err != nil {
			logger.WithError(err).Msg("创建邮件客户端失败")
			os.Exit(1)
		}
		defer mailer.Close()
		notifier = mailer
	} else {
		notifier = notify.NewLogDispatcher()
	}

	registry := metrics.NewRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.New(cfg, db, resultCache, jobs, notifier, registry)
	logger.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("排班 worker 已启动")

	if err := w.Run(ctx); err != nil {
		logger.WithError(err).Msg("排班 worker 异常退出")
		os.Exit(1)
	}
	logger.Info().Msg("排班 worker 已退出")
}

// Package worker 实现排班任务的消费执行
// 每个任务经过 指纹查缓存 → 运行互斥 → 优化 → 持久化 → 回填缓存 → 通知 的流水线
package worker

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yihuban/yihuban/internal/cache"
	"github.com/yihuban/yihuban/internal/config"
	"github.com/yihuban/yihuban/internal/database"
	"github.com/yihuban/yihuban/internal/metrics"
	"github.com/yihuban/yihuban/internal/notify"
	"github.com/yihuban/yihuban/internal/queue"
	"github.com/yihuban/yihuban/internal/repository"
	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/logger"
	"github.com/yihuban/yihuban/pkg/model"
	"github.com/yihuban/yihuban/pkg/scheduler/optimizer"
)

// Worker 排班任务执行器
type Worker struct {
	cfg       *config.Config
	db        *database.DB
	rules     *repository.ConstraintRuleRepository
	employees *repository.EmployeeRepository
	shifts    *repository.ShiftRepository
	schedules *repository.ScheduleRepository
	cache     *cache.ResultCache
	jobs      queue.JobQueue
	notifier  notify.Dispatcher
	registry  *metrics.Registry
}

// New 创建排班任务执行器
func New(
	cfg *config.Config,
	db *database.DB,
	resultCache *cache.ResultCache,
	jobs queue.JobQueue,
	notifier notify.Dispatcher,
	registry *metrics.Registry,
) *Worker {
	return &Worker{
		cfg:       cfg,
		db:        db,
		rules:     repository.NewConstraintRuleRepository(db),
		employees: repository.NewEmployeeRepository(db),
		shifts:    repository.NewShiftRepository(db),
		schedules: repository.NewScheduleRepository(db),
		cache:     resultCache,
		jobs:      jobs,
		notifier:  notifier,
		registry:  registry,
	}
}

// Run 消费任务直至上下文取消
// 任务失败不会终止循环；同一指纹已在运行的任务重新入队
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, err := w.jobs.PollNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info().Msg("Worker 收到停止信号，退出消费循环")
				return nil
			}
			return err
		}

		start := time.Now()
		err = w.Process(ctx, job)
		w.registry.ObserveDuration("yihuban_schedule_duration_seconds", time.Since(start))

		switch {
		case err == nil:
			w.registry.Counter("yihuban_schedule_runs_total").Inc("completed")
			if ackErr := w.jobs.MarkCompleted(ctx, job.ID); ackErr != nil {
				logger.WithError(ackErr).Str("job_id", job.ID.String()).Msg("确认任务完成失败")
			}
		case apperrors.Is(err, apperrors.CodeConflict):
			// 同一指纹已有运行在进行中，留待下次消费
			w.registry.Counter("yihuban_schedule_runs_total").Inc("requeued")
			logger.Warn().Str("job_id", job.ID.String()).Msg("任务正在其他进程中运行，重新入队")
			if nackErr := w.jobs.MarkFailed(ctx, job.ID, true); nackErr != nil {
				logger.WithError(nackErr).Str("job_id", job.ID.String()).Msg("任务重新入队失败")
			}
		default:
			w.registry.Counter("yihuban_schedule_runs_total").Inc("failed")
			logger.WithError(err).Str("job_id", job.ID.String()).Msg("排班任务执行失败")
			if nackErr := w.jobs.MarkFailed(ctx, job.ID, false); nackErr != nil {
				logger.WithError(nackErr).Str("job_id", job.ID.String()).Msg("确认任务失败失败")
			}
		}
	}
}

// Process 执行单个排班任务
func (w *Worker) Process(ctx context.Context, job *queue.ScheduleJob) error {
	weekStart, err := time.Parse(model.DateFormat, job.WeekStart)
	if err != nil {
		return apperrors.InvalidInput("week_start", "日期格式无效: "+job.WeekStart)
	}

	employees, err := w.employees.ListByOrg(ctx, job.OrgID)
	if err != nil {
		return err
	}
	shifts, err := w.shifts.ListByOrg(ctx, job.OrgID)
	if err != nil {
		return err
	}
	set, err := w.rules.GetActiveByOrg(ctx, job.OrgID)
	if err != nil {
		return err
	}
	optCfg := w.buildConfig(shifts)

	fp := cache.Fingerprint(employees, shifts, set, optCfg, weekStart)

	// 相同输入的结果直接复用，不重新求解
	cached, hit, err := w.cache.Get(ctx, fp)
	if err != nil {
		// 缓存不可用时退化为直接求解
		logger.WithError(err).Str("fingerprint", fp).Msg("读取结果缓存失败")
	} else if hit {
		logger.Info().Str("fingerprint", fp).Msg("命中排班结果缓存")
		return w.deliver(ctx, job, cached)
	}

	acquired, err := w.cache.AcquireRun(ctx, fp)
	if err != nil {
		return err
	}
	if !acquired {
		return apperrors.New(apperrors.CodeConflict, "相同指纹的排班运行已在进行中")
	}
	defer func() {
		if releaseErr := w.cache.ReleaseRun(context.WithoutCancel(ctx), fp); releaseErr != nil {
			logger.WithError(releaseErr).Str("fingerprint", fp).Msg("释放运行锁失败")
		}
	}()

	opt := optimizer.NewOptimizer(set, optCfg)
	result, err := opt.Optimize(ctx, employees, shifts, weekStart)
	if err != nil {
		return err
	}

	w.observeResult(job.OrgID, result)

	catalog := model.NewShiftCatalog(shifts)
	var scheduleID uuid.UUID
	err = w.db.Transaction(ctx, func(tx *sql.Tx) error {
		repo := repository.NewScheduleRepository(tx)
		scheduleID, err = repo.SaveResult(ctx, job.OrgID, result, catalog)
		return err
	})
	if err != nil {
		return err
	}
	logger.Info().
		Str("schedule_id", scheduleID.String()).
		Str("org_id", job.OrgID.String()).
		Bool("feasible", result.Validation.IsValid).
		Msg("排班结果已持久化")

	if cacheErr := w.cache.Set(ctx, fp, result); cacheErr != nil {
		// 缓存失败不影响已持久化的结果
		logger.WithError(cacheErr).Str("fingerprint", fp).Msg("写入结果缓存失败")
	}

	return w.deliver(ctx, job, result)
}

// buildConfig 由应用配置与班次目录拼装优化配置
// 班次目录上的最低人力是人力覆盖检查的数据来源
func (w *Worker) buildConfig(shifts []*model.ShiftType) *model.OptimizationConfig {
	cfg := model.DefaultOptimizationConfig()
	cfg.MaxIterations = w.cfg.Engine.MaxIterations
	cfg.FairnessWeight = w.cfg.Engine.FairnessWeight
	for _, shift := range shifts {
		if shift.MinStaff > 0 {
			cfg.MinStaffPerShift[shift.Code] = shift.MinStaff
		}
	}
	return cfg
}

// deliver 向请求方推送排班结果
func (w *Worker) deliver(ctx context.Context, job *queue.ScheduleJob, result *model.OptimizedSchedule) error {
	recipients := recipientsOf(job)
	if len(recipients) == 0 {
		return nil
	}
	if err := w.notifier.ScheduleGenerated(ctx, recipients, result); err != nil {
		// 通知失败不算任务失败，结果已经落库
		logger.WithError(err).Str("job_id", job.ID.String()).Msg("发送排班通知失败")
	}
	return nil
}

func (w *Worker) observeResult(orgID uuid.UUID, result *model.OptimizedSchedule) {
	org := orgID.String()
	w.registry.Gauge("yihuban_solution_score").Set(float64(result.Validation.Score), org)
	w.registry.Gauge("yihuban_fairness_score").Set(float64(result.FairnessScore), org)
	w.registry.Gauge("yihuban_coverage_rate").Set(result.Metrics.CoverageRate, org)
	for _, viol := range result.Validation.Violations {
		w.registry.Counter("yihuban_constraint_violations_total").Inc(string(viol.Rule))
	}
}

func recipientsOf(job *queue.ScheduleJob) []string {
	if strings.Contains(job.RequestedBy, "@") {
		return []string{job.RequestedBy}
	}
	return nil
}

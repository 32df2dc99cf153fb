// Package queue 提供排班任务队列
// 排班请求入队后由 worker 拉取执行，同一机构的请求按到达顺序串行处理
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ScheduleJob 排班任务
type ScheduleJob struct {
	ID          uuid.UUID `json:"id"`
	OrgID       uuid.UUID `json:"org_id"`
	WeekStart   string    `json:"week_start"` // YYYY-MM-DD
	RequestedBy string    `json:"requested_by,omitempty"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// JobQueue 任务队列
// PollNext 阻塞直到有下一个任务或上下文取消；取出的任务必须以
// MarkCompleted 或 MarkFailed 收尾，否则消息会留在未确认状态
type JobQueue interface {
	Enqueue(ctx context.Context, job *ScheduleJob) error
	PollNext(ctx context.Context) (*ScheduleJob, error)
	MarkCompleted(ctx context.Context, jobID uuid.UUID) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, requeue bool) error
	Close() error
}

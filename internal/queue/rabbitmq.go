package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/yihuban/yihuban/internal/config"
	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/logger"
)

// RabbitMQQueue 基于 RabbitMQ 的任务队列实现
type RabbitMQQueue struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	pubTimeout time.Duration

	mu         sync.Mutex
	deliveries <-chan amqp.Delivery
	inflight   map[uuid.UUID]amqp.Delivery
}

// NewRabbitMQQueue 连接 RabbitMQ 并声明持久化任务队列
func NewRabbitMQQueue(cfg *config.Config) (*RabbitMQQueue, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeQueueError, "连接 RabbitMQ 失败")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeQueueError, "创建通道失败")
	}

	if err := ch.Qos(cfg.RabbitMQ.Prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeQueueError, "设置预取数失败")
	}

	// 持久化、不自动删除：没有消费者时任务保留在队列中
	if _, err := ch.QueueDeclare(cfg.RabbitMQ.Queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeQueueError, "声明队列失败")
	}

	logger.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("任务队列就绪")
	return &RabbitMQQueue{
		conn:       conn,
		channel:    ch,
		queueName:  cfg.RabbitMQ.Queue,
		pubTimeout: time.Duration(cfg.RabbitMQ.PublishTimeout) * time.Second,
		inflight:   make(map[uuid.UUID]amqp.Delivery),
	}, nil
}

// Enqueue 发布排班任务
func (q *RabbitMQQueue) Enqueue(ctx context.Context, job *ScheduleJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	body, err := json.Marshal(job)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeQueueError, "任务序列化失败")
	}

	pubCtx, cancel := context.WithTimeout(ctx, q.pubTimeout)
	defer cancel()

	err = q.channel.PublishWithContext(pubCtx, "", q.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID.String(),
		Body:         body,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeQueueError, "任务发布失败")
	}

	logger.Info().
		Str("job_id", job.ID.String()).
		Str("org_id", job.OrgID.String()).
		Str("week_start", job.WeekStart).
		Msg("排班任务已入队")
	return nil
}

// PollNext 取下一个任务
// 载荷损坏的消息直接丢弃（不重新入队），继续等待下一条
func (q *RabbitMQQueue) PollNext(ctx context.Context) (*ScheduleJob, error) {
	deliveries, err := q.consumeChannel()
	if err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return nil, apperrors.New(apperrors.CodeQueueError, "消费通道已关闭")
			}

			job := &ScheduleJob{}
			if err := json.Unmarshal(msg.Body, job); err != nil {
				logger.Error().Err(err).Msg("任务载荷损坏，丢弃消息")
				_ = msg.Nack(false, false)
				continue
			}

			q.mu.Lock()
			q.inflight[job.ID] = msg
			q.mu.Unlock()
			return job, nil
		}
	}
}

// MarkCompleted 确认任务完成
func (q *RabbitMQQueue) MarkCompleted(_ context.Context, jobID uuid.UUID) error {
	msg, err := q.takeInflight(jobID)
	if err != nil {
		return err
	}
	if err := msg.Ack(false); err != nil {
		return apperrors.Wrap(err, apperrors.CodeQueueError, "确认任务失败")
	}
	return nil
}

// MarkFailed 标记任务失败
func (q *RabbitMQQueue) MarkFailed(_ context.Context, jobID uuid.UUID, requeue bool) error {
	msg, err := q.takeInflight(jobID)
	if err != nil {
		return err
	}
	if err := msg.Nack(false, requeue); err != nil {
		return apperrors.Wrap(err, apperrors.CodeQueueError, "否认任务失败")
	}
	return nil
}

// Close 关闭通道与连接
func (q *RabbitMQQueue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// consumeChannel 惰性建立消费通道
func (q *RabbitMQQueue) consumeChannel() (<-chan amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.deliveries != nil {
		return q.deliveries, nil
	}

	deliveries, err := q.channel.Consume(q.queueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeQueueError, "建立消费通道失败")
	}
	q.deliveries = deliveries
	return deliveries, nil
}

// takeInflight 取出在途消息记录
func (q *RabbitMQQueue) takeInflight(jobID uuid.UUID) (amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	msg, ok := q.inflight[jobID]
	if !ok {
		return amqp.Delivery{}, apperrors.NotFound("inflight_job", jobID.String())
	}
	delete(q.inflight, jobID)
	return msg, nil
}

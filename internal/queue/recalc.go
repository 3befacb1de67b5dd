package queue

import (
	"context"
	"time"

	"ShipRank/internal/config"
	"ShipRank/internal/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Recomputer 统计重算的执行方（StatsService 实现）
type Recomputer interface {
	Recompute(ctx context.Context, projectID uint64) error
}

// RecalcQueue 进程内评分统计重算队列。请求路径只投递项目ID即返回，
// worker 异步消费；同一项目的多个任务可以交错执行，重算本身是全量幂等的，
// 最后一次执行总能修正中间的陈旧结果。
type RecalcQueue struct {
	logger     *logrus.Logger
	recomputer Recomputer
	tasks      chan uint64
	workers    int
	maxRetries int
	retryDelay time.Duration
	group      *errgroup.Group
}

// NewRecalcQueue 创建 RecalcQueue
func NewRecalcQueue(recomputer Recomputer, logger *logrus.Logger, cfg *config.StatsConfig) *RecalcQueue {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &RecalcQueue{
		logger:     logger,
		recomputer: recomputer,
		tasks:      make(chan uint64, queueSize),
		workers:    workers,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Enqueue 投递一个项目的重算任务，队列满返回 false（调用方只记日志，
// 下一次评分提交会再触发）。
func (q *RecalcQueue) Enqueue(projectID uint64) bool {
	select {
	case q.tasks <- projectID:
		return true
	default:
		return false
	}
}

// Start 启动 worker，ctx 取消后各 worker 处理完当前任务即退出
func (q *RecalcQueue) Start(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	q.group = g
	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			return q.run(ctx)
		})
	}
	q.logger.WithField("workers", q.workers).Info("评分统计重算队列已启动")
}

// Wait 等待全部 worker 退出（Start 之后调用）
func (q *RecalcQueue) Wait() error {
	if q.group == nil {
		return nil
	}
	return q.group.Wait()
}

func (q *RecalcQueue) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case projectID := <-q.tasks:
			q.process(ctx, projectID)
		}
	}
}

// process 执行一次重算，失败按配置的次数退避重试。
// 最终失败只记日志，不回传给提交评分的请求（请求早已应答）。
func (q *RecalcQueue) process(ctx context.Context, projectID uint64) {
	start := time.Now()
	var err error
	for attempt := 1; attempt <= q.maxRetries; attempt++ {
		if err = q.recomputer.Recompute(ctx, projectID); err == nil {
			metrics.RecomputeTotal.WithLabelValues("ok").Inc()
			metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
			return
		}
		if ctx.Err() != nil {
			break
		}
		q.logger.WithError(err).WithFields(logrus.Fields{
			"project_id": projectID,
			"attempt":    attempt,
		}).Warn("统计重算失败，准备重试")

		select {
		case <-ctx.Done():
		case <-time.After(q.retryDelay * time.Duration(attempt)):
		}
	}
	metrics.RecomputeTotal.WithLabelValues("error").Inc()
	q.logger.WithError(err).WithField("project_id", projectID).Error("统计重算最终失败")
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/delivery-admin/internal/model"
	"github.com/d60-Lab/delivery-admin/internal/repository"
	"github.com/d60-Lab/delivery-admin/pkg/logger"
)

// ActivityRecorder 异步写操作记录，队列满时丢弃并告警，不阻塞管理操作
type ActivityRecorder struct {
	repo repository.ActivityRepository
	ch   chan *model.Activity
	now  func() time.Time
}

func NewActivityRecorder(repo repository.ActivityRepository, queueSize int) *ActivityRecorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &ActivityRecorder{repo: repo, ch: make(chan *model.Activity, queueSize), now: time.Now}
}

// Start 启动写入 worker；返回的函数停止 worker 并在超时前尽量排空队列
func (r *ActivityRecorder) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 1
	}
	stopCh := make(chan struct{})
	done := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for {
				select {
				case a := <-r.ch:
					r.write(a)
				case <-stopCh:
					for {
						select {
						case a := <-r.ch:
							r.write(a)
						default:
							return
						}
					}
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		for i := 0; i < workers; i++ {
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
}

func (r *ActivityRecorder) write(a *model.Activity) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.repo.Create(ctx, a); err != nil {
		logger.Warn("write activity failed", zap.String("action", a.Action), zap.String("target", a.Target), zap.Error(err))
	}
}

// Record 入队一条操作记录；r 为 nil 时忽略
func (r *ActivityRecorder) Record(action, target string, amount int, err error, message string) {
	if r == nil {
		return
	}
	a := &model.Activity{
		ID:        uuid.NewString(),
		Action:    action,
		Target:    target,
		Amount:    amount,
		Success:   err == nil,
		Message:   message,
		CreatedAt: r.now(),
	}
	select {
	case r.ch <- a:
	default:
		logger.Warn("activity queue full, drop record", zap.String("action", action), zap.String("target", target))
	}
}

// Recent 最近的操作记录
func (r *ActivityRecorder) Recent(ctx context.Context, limit int) ([]*model.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.repo.ListRecent(ctx, limit)
}

// QueueLen 返回当前队列长度（采样值）。
func (r *ActivityRecorder) QueueLen() int { return len(r.ch) }

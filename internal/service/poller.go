package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/delivery-admin/internal/client"
	"github.com/d60-Lab/delivery-admin/internal/model"
	"github.com/d60-Lab/delivery-admin/pkg/logger"
	"github.com/d60-Lab/delivery-admin/pkg/monitoring"
)

// FetchFunc 拉取一次订单快照
type FetchFunc func(ctx context.Context) ([]model.Order, error)

// Poller 周期拉取订单并把结果作为 action 投递给 store。
// 每次拉取都带请求代数，store 据此丢弃过期响应。
type Poller struct {
	fetch    FetchFunc
	store    *DashboardStore
	interval time.Duration

	mu     sync.Mutex
	parent context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPoller(fetch FetchFunc, store *DashboardStore, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{fetch: fetch, store: store, interval: interval}
}

// Start 立即拉取一次，之后按 interval 轮询，直到 ctx 结束或 Stop
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parent = ctx
	p.startLocked()
}

// Restart 取消当前轮询任务（包括进行中的请求）并重新开始
func (p *Poller) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parent == nil {
		return
	}
	p.stopLocked()
	p.startLocked()
}

func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.parent = nil
}

func (p *Poller) startLocked() {
	ctx, cancel := context.WithCancel(p.parent)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop(ctx)
	}()
}

func (p *Poller) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	seq := p.store.Begin()
	orders, err := p.fetch(ctx)
	if ctx.Err() != nil {
		// 任务已被取消，结果交给下一轮
		return
	}
	if err != nil {
		msg := client.Message(err, "")
		logger.Warn("fetch orders failed", zap.Uint64("seq", seq), zap.Error(err))
		monitoring.Capture(err, map[string]string{"operation": "orders.list"})
		p.store.Dispatch(FetchFailed(seq, msg))
		return
	}
	logger.Debug("orders fetched", zap.Uint64("seq", seq), zap.Int("count", len(orders)))
	p.store.Dispatch(FetchSucceeded(seq, orders))
}

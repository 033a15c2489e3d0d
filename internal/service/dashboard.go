package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/delivery-admin/internal/client"
	"github.com/d60-Lab/delivery-admin/internal/model"
	"github.com/d60-Lab/delivery-admin/pkg/logger"
	"github.com/d60-Lab/delivery-admin/pkg/monitoring"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrAlreadyShipped = errors.New("order already shipped")
)

// OrderBackend 订单后端
type OrderBackend interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	MarkShipped(ctx context.Context, orderID string) error
}

// DashboardView 订单看板渲染数据
type DashboardView struct {
	Menu    Menu          `json:"menu"`
	Filter  DateFilter    `json:"filter"`
	Loading bool          `json:"loading"`
	Error   string        `json:"error,omitempty"`
	Orders  []model.Order `json:"orders"`
	Rows    []OrderRow    `json:"rows"`
}

// DashboardService 订单看板：轮询、筛选、标记发货
type DashboardService struct {
	backend  OrderBackend
	store    *DashboardStore
	poller   *Poller
	recorder *ActivityRecorder
	loc      *time.Location
	now      func() time.Time
}

func NewDashboardService(backend OrderBackend, recorder *ActivityRecorder, interval time.Duration, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	store := NewDashboardStore()
	return &DashboardService{
		backend:  backend,
		store:    store,
		poller:   NewPoller(backend.ListOrders, store, interval),
		recorder: recorder,
		loc:      loc,
		now:      time.Now,
	}
}

// Start 开始轮询
func (s *DashboardService) Start(ctx context.Context) { s.poller.Start(ctx) }

// Close 停止轮询并释放状态容器
func (s *DashboardService) Close() {
	s.poller.Stop()
	s.store.Close()
}

func (s *DashboardService) State() DashboardState { return s.store.State() }

// Orders 当前全部订单（倒序），供数据分析视图使用
func (s *DashboardService) Orders() []model.Order { return s.store.State().Orders }

// SelectMenu 切换菜单并重启轮询周期
func (s *DashboardService) SelectMenu(m Menu) {
	s.store.Dispatch(MenuChanged(m))
	s.poller.Restart()
}

func (s *DashboardService) SetDateFilter(f DateFilter) {
	s.store.Dispatch(FilterChanged(f))
}

// View 每次渲染都重新应用筛选
func (s *DashboardService) View() DashboardView {
	st := s.store.State()
	visible := VisibleOrders(st.Orders, st.Menu, st.Filter, s.now().In(s.loc))
	return DashboardView{
		Menu:    st.Menu,
		Filter:  st.Filter,
		Loading: st.Loading,
		Error:   st.Error,
		Orders:  visible,
		Rows:    BuildRows(visible, s.loc),
	}
}

// MarkShipped 标记发货；成功后只改本地状态，不重新拉取
func (s *DashboardService) MarkShipped(ctx context.Context, orderID string) error {
	order, ok := s.find(orderID)
	if !ok {
		return ErrOrderNotFound
	}
	if order.IsShipped {
		return ErrAlreadyShipped
	}

	if err := s.backend.MarkShipped(ctx, orderID); err != nil {
		msg := client.Message(err, "")
		logger.Warn("mark shipped failed", zap.String("order_id", orderID), zap.Error(err))
		monitoring.Capture(err, map[string]string{"operation": "orders.mark_shipped", "order_id": orderID})
		s.store.Dispatch(MarkShippedFailed(msg))
		s.recorder.Record(model.ActionMarkShipped, orderID, 0, err, msg)
		return &BackendError{Message: msg, Err: err}
	}

	s.store.Dispatch(MarkShippedSucceeded(orderID))
	s.recorder.Record(model.ActionMarkShipped, orderID, 0, nil, "")
	logger.Info("order marked as shipped", zap.String("order_id", orderID))
	return nil
}

func (s *DashboardService) find(orderID string) (model.Order, bool) {
	for _, o := range s.store.State().Orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return model.Order{}, false
}

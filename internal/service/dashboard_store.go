package service

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/d60-Lab/delivery-admin/internal/model"
	"github.com/d60-Lab/delivery-admin/pkg/logger"
)

// DashboardState 看板状态快照，Orders 始终按创建时间倒序
type DashboardState struct {
	Orders  []model.Order
	Loading bool
	Error   string
	Menu    Menu
	Filter  DateFilter
	// Applied 最近一次被采纳的请求代数
	Applied uint64
}

func (s DashboardState) clone() DashboardState {
	c := s
	c.Orders = make([]model.Order, len(s.Orders))
	for i, o := range s.Orders {
		c.Orders[i] = o.Clone()
	}
	return c
}

// dashboardModel 只由 store 的 goroutine 读写
type dashboardModel struct {
	state DashboardState
	// shippedAt 本地标记发货时已发出的最大请求代数；
	// 代数不超过它的快照可能早于这次发货，需要保留已发货标记
	shippedAt map[string]uint64
	issued    func() uint64
}

// Action 看板状态只能通过 Action 修改
type Action interface {
	apply(m *dashboardModel)
}

type fetchSucceeded struct {
	seq    uint64
	orders []model.Order
}

type fetchFailed struct {
	seq uint64
	msg string
}

type markShippedSucceeded struct{ orderID string }

type markShippedFailed struct{ msg string }

type filterChanged struct{ filter DateFilter }

type menuChanged struct{ menu Menu }

func FetchSucceeded(seq uint64, orders []model.Order) Action {
	return fetchSucceeded{seq: seq, orders: orders}
}

func FetchFailed(seq uint64, msg string) Action { return fetchFailed{seq: seq, msg: msg} }

func MarkShippedSucceeded(orderID string) Action { return markShippedSucceeded{orderID: orderID} }

func MarkShippedFailed(msg string) Action { return markShippedFailed{msg: msg} }

func FilterChanged(f DateFilter) Action { return filterChanged{filter: f} }

func MenuChanged(m Menu) Action { return menuChanged{menu: m} }

// stale 首次结算前不存在过期响应
func (m *dashboardModel) stale(seq uint64) bool {
	return m.state.Applied != 0 && seq <= m.state.Applied
}

func (a fetchSucceeded) apply(m *dashboardModel) {
	if m.stale(a.seq) {
		logger.Debug("discard stale orders snapshot", zap.Uint64("seq", a.seq), zap.Uint64("applied", m.state.Applied))
		return
	}
	orders := make([]model.Order, len(a.orders))
	for i, o := range a.orders {
		orders[i] = o.Clone()
	}
	SortByCreatedDesc(orders)
	for i := range orders {
		if markSeq, ok := m.shippedAt[orders[i].ID]; ok && a.seq <= markSeq {
			orders[i].IsShipped = true
		}
	}
	for id, markSeq := range m.shippedAt {
		if a.seq > markSeq {
			delete(m.shippedAt, id)
		}
	}
	m.state.Orders = orders
	m.state.Error = ""
	m.state.Loading = false
	m.state.Applied = a.seq
}

func (a fetchFailed) apply(m *dashboardModel) {
	if m.stale(a.seq) {
		logger.Debug("discard stale orders failure", zap.Uint64("seq", a.seq), zap.Uint64("applied", m.state.Applied))
		return
	}
	m.state.Error = a.msg
	m.state.Loading = false
	m.state.Applied = a.seq
}

func (a markShippedSucceeded) apply(m *dashboardModel) {
	for i := range m.state.Orders {
		if m.state.Orders[i].ID == a.orderID {
			m.state.Orders[i].IsShipped = true
		}
	}
	m.shippedAt[a.orderID] = m.issued()
}

func (a markShippedFailed) apply(m *dashboardModel) { m.state.Error = a.msg }

func (a filterChanged) apply(m *dashboardModel) { m.state.Filter = a.filter }

func (a menuChanged) apply(m *dashboardModel) { m.state.Menu = a.menu }

// DashboardStore 看板状态容器，由单个 goroutine 串行处理 action 和查询
type DashboardStore struct {
	actions chan Action
	queries chan chan DashboardState
	quit    chan struct{}
	done    chan struct{}
	seq     atomic.Uint64
	once    sync.Once
}

func NewDashboardStore() *DashboardStore {
	s := &DashboardStore{
		actions: make(chan Action),
		queries: make(chan chan DashboardState),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	m := &dashboardModel{
		state:     DashboardState{Loading: true, Menu: DefaultMenu, Filter: DefaultDateFilter, Orders: []model.Order{}},
		shippedAt: make(map[string]uint64),
		issued:    s.seq.Load,
	}
	go s.loop(m)
	return s
}

func (s *DashboardStore) loop(m *dashboardModel) {
	defer close(s.done)
	for {
		select {
		case a := <-s.actions:
			a.apply(m)
		case reply := <-s.queries:
			reply <- m.state.clone()
		case <-s.quit:
			return
		}
	}
}

// Begin 为一次拉取分配单调递增的请求代数
func (s *DashboardStore) Begin() uint64 { return s.seq.Add(1) }

// Dispatch 返回时 action 已生效；store 关闭后丢弃
func (s *DashboardStore) Dispatch(a Action) {
	select {
	case s.actions <- a:
	case <-s.done:
	}
}

// State 返回当前状态的深拷贝
func (s *DashboardStore) State() DashboardState {
	reply := make(chan DashboardState, 1)
	select {
	case s.queries <- reply:
		return <-reply
	case <-s.done:
		return DashboardState{Menu: DefaultMenu, Filter: DefaultDateFilter, Orders: []model.Order{}}
	}
}

func (s *DashboardStore) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

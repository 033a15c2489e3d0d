package service

import (
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/d60-Lab/delivery-admin/internal/model"
)

// DateCount 某个日历日的订单数
type DateCount struct {
	Date  string    `json:"date"`
	Day   time.Time `json:"-"`
	Count int       `json:"count"`
}

// CountByDate 按日历日聚合，结果按日期升序
func CountByDate(orders []model.Order, loc *time.Location) []DateCount {
	index := make(map[string]int)
	var out []DateCount
	for _, o := range orders {
		day := startOfDay(o.CreatedAt.In(loc))
		key := day.Format(DateLayout)
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, DateCount{Date: key, Day: day, Count: 1})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// BestDay 订单最多的一天；数量相同时取最早的日期
func BestDay(counts []DateCount) (DateCount, bool) {
	if len(counts) == 0 {
		return DateCount{}, false
	}
	best := counts[0]
	for _, c := range counts[1:] {
		if c.Count > best.Count || (c.Count == best.Count && c.Day.Before(best.Day)) {
			best = c
		}
	}
	return best, true
}

// Chart geometry
const (
	ChartWidth     = 720
	ChartHeight    = 300
	chartPadLeft   = 48
	chartPadRight  = 24
	chartPadTop    = 24
	chartPadBottom = 48
	PointRadius    = 4
	// HitRadius 点击到点的最大距离，超出视为未命中
	HitRadius = 10
)

// ChartPoint 折线图上的一个点（像素坐标）
type ChartPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
	Count int     `json:"count"`
}

// ChartLayout 单条时间序列的像素布局
type ChartLayout struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	MaxCount int          `json:"max_count"`
	Points   []ChartPoint `json:"points"`
}

// Layout x 为日期（等距），y 为订单数
func Layout(series []DateCount) ChartLayout {
	l := ChartLayout{Width: ChartWidth, Height: ChartHeight, MaxCount: 1}
	for _, c := range series {
		if c.Count > l.MaxCount {
			l.MaxCount = c.Count
		}
	}
	plotW := float64(ChartWidth - chartPadLeft - chartPadRight)
	plotH := float64(ChartHeight - chartPadTop - chartPadBottom)
	for i, c := range series {
		x := float64(chartPadLeft) + plotW/2
		if len(series) > 1 {
			x = float64(chartPadLeft) + plotW*float64(i)/float64(len(series)-1)
		}
		y := float64(chartPadTop) + plotH*(1-float64(c.Count)/float64(l.MaxCount))
		l.Points = append(l.Points, ChartPoint{X: x, Y: y, Label: c.Date, Count: c.Count})
	}
	return l
}

// Baseline y=0 的像素位置
func (l ChartLayout) Baseline() float64 {
	return float64(ChartHeight - chartPadBottom)
}

func (l ChartLayout) PlotLeft() float64  { return chartPadLeft }
func (l ChartLayout) PlotRight() float64 { return float64(ChartWidth - chartPadRight) }
func (l ChartLayout) PlotTop() float64   { return chartPadTop }

// Nearest 返回离 (x, y) 最近且在 HitRadius 内的点
func (l ChartLayout) Nearest(x, y float64) (int, bool) {
	best, bestDist := -1, math.MaxFloat64
	for i, p := range l.Points {
		d := math.Hypot(p.X-x, p.Y-y)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > HitRadius {
		return -1, false
	}
	return best, true
}

// Summary 图表下方的统计信息，两种形态互相替换
type Summary struct {
	Kind        string `json:"kind"`
	Date        string `json:"date,omitempty"`
	Count       int    `json:"count,omitempty"`
	TotalOrders int    `json:"total_orders,omitempty"`
	BestDay     string `json:"best_day,omitempty"`
	BestCount   int    `json:"best_count,omitempty"`
}

const (
	SummaryPoint = "point"
	SummaryAll   = "all"
)

// OrderSource 提供看板已拉取的订单
type OrderSource interface {
	Orders() []model.Order
}

// AnalyticsView 渲染所需的全部数据
type AnalyticsView struct {
	Filter  DateFilter  `json:"filter"`
	Series  []DateCount `json:"series"`
	Chart   ChartLayout `json:"chart"`
	Summary *Summary    `json:"summary,omitempty"`
}

var ErrPointOutOfRange = errors.New("chart point out of range")

// AnalyticsService 自带日期筛选，订单来自看板
type AnalyticsService struct {
	source OrderSource
	loc    *time.Location
	now    func() time.Time

	mu      sync.Mutex
	filter  DateFilter
	summary *Summary
}

func NewAnalyticsService(source OrderSource, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{source: source, loc: loc, now: time.Now, filter: DefaultDateFilter}
}

func (s *AnalyticsService) SetFilter(f DateFilter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// Reset 离开后重新进入视图时恢复默认筛选并清空统计
func (s *AnalyticsService) Reset() {
	s.mu.Lock()
	s.filter = DefaultDateFilter
	s.summary = nil
	s.mu.Unlock()
}

func (s *AnalyticsService) series(f DateFilter) []DateCount {
	now := s.now().In(s.loc)
	return CountByDate(FilterByDate(s.source.Orders(), f, now), s.loc)
}

// View 每次根据当前订单与筛选重新计算
func (s *AnalyticsService) View() AnalyticsView {
	s.mu.Lock()
	f, summary := s.filter, s.summary
	s.mu.Unlock()

	series := s.series(f)
	v := AnalyticsView{Filter: f, Series: series, Chart: Layout(series)}
	if summary != nil {
		cp := *summary
		v.Summary = &cp
	}
	return v
}

// SelectAt 按光标坐标选中最近的点；未命中时保留原统计
func (s *AnalyticsService) SelectAt(x, y float64) (*Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := s.series(s.filter)
	i, ok := Layout(series).Nearest(x, y)
	if !ok {
		return s.summary, false
	}
	s.summary = &Summary{Kind: SummaryPoint, Date: series[i].Date, Count: series[i].Count}
	return s.summary, true
}

// SelectIndex 按序号选中一个点
func (s *AnalyticsService) SelectIndex(i int) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := s.series(s.filter)
	if i < 0 || i >= len(series) {
		return nil, ErrPointOutOfRange
	}
	s.summary = &Summary{Kind: SummaryPoint, Date: series[i].Date, Count: series[i].Count}
	return s.summary, nil
}

// ShowAll 总订单数取看板的全部订单，最佳日取当前窗口
func (s *AnalyticsService) ShowAll() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := &Summary{Kind: SummaryAll, TotalOrders: len(s.source.Orders())}
	if best, ok := BestDay(s.series(s.filter)); ok {
		sum.BestDay = best.Date
		sum.BestCount = best.Count
	}
	s.summary = sum
	return sum
}

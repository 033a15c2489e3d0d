package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/d60-Lab/delivery-admin/internal/model"
)

// DateFilter 日期窗口
type DateFilter string

const (
	FilterToday      DateFilter = "Today"
	FilterLast3Days  DateFilter = "Last 3 Days"
	FilterLast15Days DateFilter = "Last 15 Days"
	FilterLastMonth  DateFilter = "Last Month"
)

const DefaultDateFilter = FilterToday

// DateFilters 下拉框顺序
var DateFilters = []DateFilter{FilterToday, FilterLast3Days, FilterLast15Days, FilterLastMonth}

// Label 下拉框展示文本
func (f DateFilter) Label() string {
	if f == FilterToday {
		return "Today's Orders"
	}
	return string(f)
}

func ParseDateFilter(s string) (DateFilter, error) {
	for _, f := range DateFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown date filter %q", s)
}

// Cutoff 返回最早允许的创建时间；Today 按日历日比较，不使用 cutoff
func (f DateFilter) Cutoff(now time.Time) time.Time {
	switch f {
	case FilterLast3Days:
		return now.AddDate(0, 0, -3)
	case FilterLast15Days:
		return now.AddDate(0, 0, -15)
	case FilterLastMonth:
		return now.AddDate(0, -1, 0)
	default:
		return startOfDay(now)
	}
}

// Includes 判断订单创建时间是否落在窗口内；now 的时区决定日历日
func (f DateFilter) Includes(createdAt, now time.Time) bool {
	if f == FilterToday {
		return sameDate(createdAt.In(now.Location()), now)
	}
	return !createdAt.Before(f.Cutoff(now))
}

// FilterByDate 保持输入顺序
func FilterByDate(orders []model.Order, f DateFilter, now time.Time) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if f.Includes(o.CreatedAt, now) {
			out = append(out, o)
		}
	}
	return out
}

// PendingOnly 只保留未发货订单
func PendingOnly(orders []model.Order) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if !o.IsShipped {
			out = append(out, o)
		}
	}
	return out
}

// SortByCreatedDesc 按创建时间倒序，原地排序
func SortByCreatedDesc(orders []model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// VisibleOrders 当前菜单与日期窗口下要展示的订单
func VisibleOrders(orders []model.Order, menu Menu, f DateFilter, now time.Time) []model.Order {
	filtered := FilterByDate(orders, f, now)
	if menu == MenuPendingOrders {
		return PendingOnly(filtered)
	}
	return filtered
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

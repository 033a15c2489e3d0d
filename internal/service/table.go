package service

import (
	"time"

	"github.com/d60-Lab/delivery-admin/internal/model"
)

const (
	notAvailable = "N/A"
	// 与浏览器 en-US toLocaleTimeString / toLocaleDateString 一致
	TimeLayout = "3:04:05 PM"
	DateLayout = "1/2/2006"
)

// OrderRow 表格中的一行，对应一个购物车条目。
// First 为 true 时携带订单级字段，并通过 RowSpan 覆盖该订单的所有条目行。
type OrderRow struct {
	OrderID  string `json:"order_id"`
	Dish     string `json:"dish"`
	Quantity int    `json:"quantity"`
	First    bool   `json:"first"`
	RowSpan  int    `json:"row_span,omitempty"`
	Time     string `json:"time,omitempty"`
	Date     string `json:"date,omitempty"`
	Name     string `json:"name,omitempty"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	ZipCode  string `json:"zip_code,omitempty"`
	Status   string `json:"status,omitempty"`
	CanShip  bool   `json:"can_ship"`
}

// BuildRows 展开订单为条目行；空购物车的订单不产生行
func BuildRows(orders []model.Order, loc *time.Location) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		for idx, item := range o.Cart {
			row := OrderRow{OrderID: o.ID, Dish: item.Name, Quantity: item.CartQuantity}
			if idx == 0 {
				created := o.CreatedAt.In(loc)
				info := o.ShippingInfo
				if info == nil {
					info = &model.ShippingInfo{}
				}
				row.First = true
				row.RowSpan = len(o.Cart)
				row.Time = created.Format(TimeLayout)
				row.Date = created.Format(DateLayout)
				row.Name = orNA(info.Name)
				row.Address = orNA(info.Address)
				row.Phone = orNA(info.Phone)
				row.ZipCode = orNA(info.ZipCode)
				row.Status = o.Status()
				row.CanShip = !o.IsShipped
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

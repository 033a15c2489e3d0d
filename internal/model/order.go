package model

import (
	"time"
)

// Order 订单后端返回的订单快照
type Order struct {
	ID           string        `json:"_id"`
	CreatedAt    time.Time     `json:"createdAt"`
	IsShipped    bool          `json:"isShipped"`
	Cart         []LineItem    `json:"cart"`
	ShippingInfo *ShippingInfo `json:"shippingInfo,omitempty"`
}

// LineItem 购物车条目，只属于一个订单
type LineItem struct {
	Name         string `json:"name"`
	CartQuantity int    `json:"cartQuantity"`
}

// ShippingInfo 各字段均可能缺失
type ShippingInfo struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// OrderStatus 展示用状态
const (
	OrderStatusPending = "Pending"
	OrderStatusShipped = "Shipped"
)

// Status 返回展示用状态文本
func (o Order) Status() string {
	if o.IsShipped {
		return OrderStatusShipped
	}
	return OrderStatusPending
}

// Clone 深拷贝，避免 cart 在视图间共享
func (o Order) Clone() Order {
	c := o
	if o.Cart != nil {
		c.Cart = append([]LineItem(nil), o.Cart...)
	}
	if o.ShippingInfo != nil {
		info := *o.ShippingInfo
		c.ShippingInfo = &info
	}
	return c
}

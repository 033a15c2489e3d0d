package model

import "time"

// Activity 管理员操作记录
type Activity struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Action    string    `json:"action" gorm:"type:varchar(32);index;not null"`
	Target    string    `json:"target" gorm:"type:varchar(128);index"`
	Amount    int       `json:"amount"`
	Success   bool      `json:"success" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index;not null"`
}

func (Activity) TableName() string { return "activities" }

// Activity actions
const (
	ActionMarkShipped    = "mark_shipped"
	ActionAddProduct     = "add_product"
	ActionUpdateQuantity = "update_quantity"
)

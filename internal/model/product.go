package model

// Product 库存记录，Quantity 不小于 0
type Product struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

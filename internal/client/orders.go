package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/d60-Lab/delivery-admin/internal/model"
)

const markShippedFallback = "Error marking order as shipped"

// OrderPaths 订单后端路径
type OrderPaths struct {
	List string
	Ship string
}

// OrderClient 订单后端 REST 客户端
type OrderClient struct {
	backend
	paths OrderPaths
}

func NewOrderClient(baseURL string, paths OrderPaths, httpClient *http.Client) *OrderClient {
	return &OrderClient{backend: newBackend(baseURL, httpClient), paths: paths}
}

// ListOrders 拉取全部订单快照（未排序）
func (c *OrderClient) ListOrders(ctx context.Context) ([]model.Order, error) {
	var body struct {
		Orders []model.Order `json:"orders"`
	}
	if err := c.getJSON(ctx, "orders.list", c.paths.List, &body); err != nil {
		return nil, err
	}
	if body.Orders == nil {
		body.Orders = []model.Order{}
	}
	return body.Orders, nil
}

// MarkShipped 标记订单已发货
func (c *OrderClient) MarkShipped(ctx context.Context, orderID string) error {
	_, err := c.postJSON(ctx, "orders.mark_shipped", c.paths.Ship, map[string]string{"orderId": orderID})
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message == "" {
		apiErr.Message = markShippedFallback
	}
	return err
}

package client

import (
	"context"
	"net/http"

	"github.com/d60-Lab/delivery-admin/internal/model"
)

// InventoryPaths 库存后端路径
type InventoryPaths struct {
	List   string
	Add    string
	Update string
}

// InventoryClient 库存后端 REST 客户端
type InventoryClient struct {
	backend
	paths InventoryPaths
}

func NewInventoryClient(baseURL string, paths InventoryPaths, httpClient *http.Client) *InventoryClient {
	return &InventoryClient{backend: newBackend(baseURL, httpClient), paths: paths}
}

type productRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (c *InventoryClient) ListProducts(ctx context.Context) ([]model.Product, error) {
	var body struct {
		Products []model.Product `json:"products"`
	}
	if err := c.getJSON(ctx, "inventory.list", c.paths.List, &body); err != nil {
		return nil, err
	}
	if body.Products == nil {
		body.Products = []model.Product{}
	}
	return body.Products, nil
}

// AddProduct 新建商品，返回后端确认信息
func (c *InventoryClient) AddProduct(ctx context.Context, productID string, quantity int) (string, error) {
	env, err := c.postJSON(ctx, "inventory.add", c.paths.Add, productRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// UpdateQuantity 在现有库存上增加 delta（不是覆盖）
func (c *InventoryClient) UpdateQuantity(ctx context.Context, productID string, delta int) (string, error) {
	env, err := c.postJSON(ctx, "inventory.update", c.paths.Update, productRequest{ProductID: productID, Quantity: delta})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

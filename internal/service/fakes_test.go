package service

import (
	"context"
	"sync"
	"time"

	"github.com/d60-Lab/delivery-admin/internal/model"
)

var testNow = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func order(id string, createdAt time.Time, shipped bool, items ...model.LineItem) model.Order {
	return model.Order{ID: id, CreatedAt: createdAt, IsShipped: shipped, Cart: items}
}

func item(name string, qty int) model.LineItem {
	return model.LineItem{Name: name, CartQuantity: qty}
}

type fakeOrderBackend struct {
	mu        sync.Mutex
	orders    []model.Order
	listErr   error
	shipErr   error
	listCalls int
	shipped   []string
}

func (f *fakeOrderBackend) ListOrders(ctx context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Order, len(f.orders))
	for i, o := range f.orders {
		out[i] = o.Clone()
	}
	return out, nil
}

func (f *fakeOrderBackend) MarkShipped(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shipped = append(f.shipped, orderID)
	return f.shipErr
}

func (f *fakeOrderBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeInventoryBackend struct {
	mu       sync.Mutex
	products map[string]int
	order    []string
	addErr   error
	updErr   error
	listErr  error
	requests int
	deltas   []int
}

func newFakeInventory(products ...model.Product) *fakeInventoryBackend {
	f := &fakeInventoryBackend{products: make(map[string]int)}
	for _, p := range products {
		f.products[p.ProductID] = p.Quantity
		f.order = append(f.order, p.ProductID)
	}
	return f
}

func (f *fakeInventoryBackend) ListProducts(ctx context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Product, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, model.Product{ProductID: id, Quantity: f.products[id]})
	}
	return out, nil
}

func (f *fakeInventoryBackend) AddProduct(ctx context.Context, productID string, quantity int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.addErr != nil {
		return "", f.addErr
	}
	if _, ok := f.products[productID]; !ok {
		f.order = append(f.order, productID)
	}
	f.products[productID] = quantity
	return "Product added successfully", nil
}

func (f *fakeInventoryBackend) UpdateQuantity(ctx context.Context, productID string, delta int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	f.deltas = append(f.deltas, delta)
	if f.updErr != nil {
		return "", f.updErr
	}
	f.products[productID] += delta
	return "Quantity updated successfully", nil
}

type memoryActivityRepo struct {
	mu    sync.Mutex
	items []*model.Activity
}

func (r *memoryActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, a)
	return nil
}

func (r *memoryActivityRepo) ListRecent(ctx context.Context, limit int) ([]*model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Activity, 0, limit)
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}

func (r *memoryActivityRepo) ListByTarget(ctx context.Context, target string, limit int) ([]*model.Activity, error) {
	return nil, nil
}

func (r *memoryActivityRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *memoryActivityRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

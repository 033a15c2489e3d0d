package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/d60-Lab/delivery-admin/internal/client"
	"github.com/d60-Lab/delivery-admin/internal/model"
	"github.com/d60-Lab/delivery-admin/pkg/logger"
	"github.com/d60-Lab/delivery-admin/pkg/monitoring"
)

const (
	msgFieldsRequired      = "Both fields are required."
	msgNegativeQuantity    = "Quantity cannot be negative."
	addProductFallback     = "Error adding product"
	updateQuantityFallback = "Error updating quantity"
)

// ValidationError 本地校验失败，不会发出请求
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// BackendError 后端请求失败，Message 为展示给用户的信息
type BackendError struct {
	Message string
	Err     error
}

func (e *BackendError) Error() string { return e.Message }
func (e *BackendError) Unwrap() error { return e.Err }

// InventoryBackend 库存后端
type InventoryBackend interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	AddProduct(ctx context.Context, productID string, quantity int) (string, error)
	UpdateQuantity(ctx context.Context, productID string, delta int) (string, error)
}

// AddProductForm 新增商品表单，字段保持原始输入
type AddProductForm struct {
	ProductID string `json:"productId" form:"productId" validate:"required"`
	Quantity  string `json:"quantity" form:"quantity" validate:"required"`
}

// InventoryState 库存视图状态
type InventoryState struct {
	Products []model.Product `json:"products"`
	Loading  bool            `json:"loading"`
	Error    string          `json:"error,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// InventoryService 库存视图：加载一次、新增、增量更新
type InventoryService struct {
	backend  InventoryBackend
	recorder *ActivityRecorder
	validate *validator.Validate

	mu    sync.Mutex
	state InventoryState
}

func NewInventoryService(backend InventoryBackend, recorder *ActivityRecorder) *InventoryService {
	return &InventoryService{
		backend:  backend,
		recorder: recorder,
		validate: validator.New(),
		state:    InventoryState{Loading: true, Products: []model.Product{}},
	}
}

func (s *InventoryService) View() InventoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.state
	v.Products = append([]model.Product(nil), s.state.Products...)
	return v
}

// Load 拉取商品列表；成功时清除错误
func (s *InventoryService) Load(ctx context.Context) error {
	products, err := s.backend.ListProducts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		logger.Warn("fetch products failed", zap.Error(err))
		monitoring.Capture(err, map[string]string{"operation": "inventory.list"})
		s.state.Error = client.Message(err, "")
		return err
	}
	s.state.Products = products
	s.state.Error = ""
	return nil
}

// Remount 重新进入库存视图：状态回到初始值后重新拉取
func (s *InventoryService) Remount(ctx context.Context) error {
	s.mu.Lock()
	s.state = InventoryState{Loading: true, Products: []model.Product{}}
	s.mu.Unlock()
	return s.Load(ctx)
}

// Add 校验必填项后创建商品，成功后重新拉取列表
func (s *InventoryService) Add(ctx context.Context, form AddProductForm) error {
	form.ProductID = strings.TrimSpace(form.ProductID)
	form.Quantity = strings.TrimSpace(form.Quantity)
	if err := s.validate.Struct(form); err != nil {
		return s.fail(&ValidationError{Message: msgFieldsRequired})
	}
	quantity := ParseAmount(form.Quantity)
	if quantity < 0 {
		return s.fail(&ValidationError{Message: msgNegativeQuantity})
	}

	msg, err := s.backend.AddProduct(ctx, form.ProductID, quantity)
	if err != nil {
		text := client.Message(err, addProductFallback)
		logger.Warn("add product failed", zap.String("product_id", form.ProductID), zap.Error(err))
		monitoring.Capture(err, map[string]string{"operation": "inventory.add", "product_id": form.ProductID})
		s.recorder.Record(model.ActionAddProduct, form.ProductID, quantity, err, text)
		return s.fail(&BackendError{Message: text, Err: err})
	}
	s.recorder.Record(model.ActionAddProduct, form.ProductID, quantity, nil, msg)
	s.succeed(msg)
	_ = s.Load(ctx)
	return nil
}

// Update 在现有库存上增加 raw 解析出的数量，空或无法解析视为 0
func (s *InventoryService) Update(ctx context.Context, productID, raw string) error {
	delta := ParseAmount(raw)
	msg, err := s.backend.UpdateQuantity(ctx, productID, delta)
	if err != nil {
		text := client.Message(err, updateQuantityFallback)
		logger.Warn("update quantity failed", zap.String("product_id", productID), zap.Int("delta", delta), zap.Error(err))
		monitoring.Capture(err, map[string]string{"operation": "inventory.update", "product_id": productID})
		s.recorder.Record(model.ActionUpdateQuantity, productID, delta, err, text)
		return s.fail(&BackendError{Message: text, Err: err})
	}
	s.recorder.Record(model.ActionUpdateQuantity, productID, delta, nil, msg)
	s.succeed(msg)
	_ = s.Load(ctx)
	return nil
}

func (s *InventoryService) fail(err error) error {
	s.mu.Lock()
	s.state.Error = err.Error()
	s.mu.Unlock()
	return err
}

func (s *InventoryService) succeed(msg string) {
	s.mu.Lock()
	s.state.Message = msg
	s.mu.Unlock()
}

// ParseAmount 按浏览器 parseInt 的方式取前导整数，取不到时为 0
func ParseAmount(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

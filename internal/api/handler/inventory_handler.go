package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/delivery-admin/internal/service"
	"github.com/d60-Lab/delivery-admin/pkg/response"
)

// AddProductForm 页面新增商品；结果显示在库存视图
func (h *Handler) AddProductForm(c *gin.Context) {
	var form service.AddProductForm
	_ = c.ShouldBind(&form)
	_ = h.inventory.Add(c.Request.Context(), form)
	back(c)
}

// UpdateQuantityForm 商品 ID 由隐藏字段提交，ID 中可以含 / ? # 等字符
func (h *Handler) UpdateQuantityForm(c *gin.Context) {
	id := c.PostForm("productId")
	if id == "" {
		c.String(http.StatusBadRequest, "productId is required")
		return
	}
	_ = h.inventory.Update(c.Request.Context(), id, c.PostForm("amount"))
	back(c)
}

// ListProducts 库存列表
// @Summary 库存列表
// @Tags 库存
// @Produce json
// @Param refresh query bool false "重新拉取"
// @Success 200 {object} response.Response{data=service.InventoryState}
// @Failure 502 {object} response.Response
// @Router /api/v1/inventory/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		if err := h.inventory.Load(c.Request.Context()); err != nil {
			response.BadGateway(c, h.inventory.View().Error)
			return
		}
	}
	response.Success(c, h.inventory.View())
}

type addProductRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// AddProduct 新增商品
// @Summary 新增商品
// @Tags 库存
// @Accept json
// @Produce json
// @Param request body addProductRequest true "商品"
// @Success 200 {object} response.Response{data=service.InventoryState}
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/inventory/products [post]
func (h *Handler) AddProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	form := service.AddProductForm{ProductID: req.ProductID}
	if req.Quantity != nil {
		form.Quantity = strconv.Itoa(*req.Quantity)
	}
	h.inventoryResult(c, h.inventory.Add(c.Request.Context(), form))
}

type updateQuantityRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

// UpdateQuantity 在现有库存上增加数量
// @Summary 增加库存
// @Description quantity 缺省按 0 处理
// @Tags 库存
// @Accept json
// @Produce json
// @Param request body updateQuantityRequest true "商品与增量"
// @Success 200 {object} response.Response{data=service.InventoryState}
// @Failure 502 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/inventory/quantity [post]
func (h *Handler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	raw := ""
	if req.Quantity != nil {
		raw = strconv.Itoa(*req.Quantity)
	}
	h.inventoryResult(c, h.inventory.Update(c.Request.Context(), req.ProductID, raw))
}

func (h *Handler) inventoryResult(c *gin.Context, err error) {
	var be *service.BackendError
	switch {
	case err == nil:
		response.Success(c, h.inventory.View())
	case service.IsValidation(err):
		response.BadRequest(c, err.Error())
	case errors.As(err, &be):
		response.BadGateway(c, be.Message)
	default:
		response.InternalError(c, err)
	}
}

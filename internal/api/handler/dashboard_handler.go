package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/delivery-admin/internal/service"
	"github.com/d60-Lab/delivery-admin/pkg/response"
)

// DashboardPage 渲染当前菜单对应的页面
func (h *Handler) DashboardPage(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard", h.page(c))
}

// SelectMenu 切换菜单；进入数据分析或库存视图时按首次挂载处理
func (h *Handler) SelectMenu(c *gin.Context) {
	menu, err := service.ParseMenu(c.PostForm("menu"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	h.switchMenu(c, menu)
	back(c)
}

func (h *Handler) switchMenu(c *gin.Context, menu service.Menu) {
	// 重复选择同一菜单不重启轮询
	if menu == h.dashboard.State().Menu {
		return
	}
	h.dashboard.SelectMenu(menu)
	switch menu {
	case service.MenuVisualData:
		h.analytics.Reset()
	case service.MenuInventory:
		_ = h.inventory.Remount(c.Request.Context())
	}
}

// SetDateFilter 看板日期筛选
func (h *Handler) SetDateFilter(c *gin.Context) {
	f, err := service.ParseDateFilter(c.PostForm("filter"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	h.dashboard.SetDateFilter(f)
	back(c)
}

// ShipOrderForm 页面上的 Mark as Shipped 按钮；失败信息会出现在看板的错误区
func (h *Handler) ShipOrderForm(c *gin.Context) {
	id := c.PostForm("orderId")
	if id == "" {
		c.String(http.StatusBadRequest, "orderId is required")
		return
	}
	_ = h.dashboard.MarkShipped(c.Request.Context(), id)
	back(c)
}

// ListOrders 查询看板订单
// @Summary 当前菜单与日期筛选下的订单
// @Tags 订单
// @Produce json
// @Success 200 {object} response.Response{data=service.DashboardView}
// @Router /api/v1/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	if raw, ok := c.GetQuery("filter"); ok {
		f, err := service.ParseDateFilter(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		h.dashboard.SetDateFilter(f)
	}
	if raw, ok := c.GetQuery("menu"); ok {
		m, err := service.ParseMenu(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		h.switchMenu(c, m)
	}
	response.Success(c, h.dashboard.View())
}

// 订单 ID 放在请求体中，不拼进路径
type shipOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// ShipOrder 标记订单已发货
// @Summary 标记发货
// @Tags 订单
// @Produce json
// @Accept json
// @Param request body shipOrderRequest true "订单"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/orders/ship [post]
func (h *Handler) ShipOrder(c *gin.Context) {
	var req shipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id := req.OrderID
	err := h.dashboard.MarkShipped(c.Request.Context(), id)
	var be *service.BackendError
	switch {
	case err == nil:
		response.Success(c, gin.H{"order_id": id, "status": "Shipped"})
	case errors.Is(err, service.ErrOrderNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrAlreadyShipped):
		response.BadRequest(c, err.Error())
	case errors.As(err, &be):
		response.BadGateway(c, be.Message)
	default:
		response.InternalError(c, err)
	}
}

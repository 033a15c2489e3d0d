package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/delivery-admin/internal/service"
	"github.com/d60-Lab/delivery-admin/pkg/response"
)

// ChartSVG 当前筛选下的订单折线图
func (h *Handler) ChartSVG(c *gin.Context) {
	v := h.analytics.View()
	selected := ""
	if v.Summary != nil && v.Summary.Kind == service.SummaryPoint {
		selected = v.Summary.Date
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", renderChart(v.Chart, selected))
}

func (h *Handler) AnalyticsFilterForm(c *gin.Context) {
	f, err := service.ParseDateFilter(c.PostForm("filter"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	h.analytics.SetFilter(f)
	back(c)
}

// AnalyticsSelectForm 点击图表：image 输入框提交 chart.x / chart.y，也接受 index
func (h *Handler) AnalyticsSelectForm(c *gin.Context) {
	if raw := c.PostForm("index"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			c.String(http.StatusBadRequest, "invalid index")
			return
		}
		_, _ = h.analytics.SelectIndex(i)
		back(c)
		return
	}
	x, errX := strconv.ParseFloat(c.PostForm("chart.x"), 64)
	y, errY := strconv.ParseFloat(c.PostForm("chart.y"), 64)
	if errX != nil || errY != nil {
		c.String(http.StatusBadRequest, "invalid chart coordinates")
		return
	}
	h.analytics.SelectAt(x, y)
	back(c)
}

func (h *Handler) ShowAllForm(c *gin.Context) {
	h.analytics.ShowAll()
	back(c)
}

// GetAnalytics 数据分析视图
// @Summary 每日订单数与当前统计
// @Tags 数据分析
// @Produce json
// @Param filter query string false "日期筛选" Enums(Today, Last 3 Days, Last 15 Days, Last Month)
// @Success 200 {object} response.Response{data=service.AnalyticsView}
// @Failure 400 {object} response.Response
// @Router /api/v1/analytics [get]
func (h *Handler) GetAnalytics(c *gin.Context) {
	if raw, ok := c.GetQuery("filter"); ok {
		f, err := service.ParseDateFilter(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		h.analytics.SetFilter(f)
	}
	response.Success(c, h.analytics.View())
}

type selectPointRequest struct {
	Index *int     `json:"index"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

// SelectPoint 选中图表上的一个点
// @Summary 选中某一天
// @Description 传 index，或传像素坐标 x/y（按最近点命中）
// @Tags 数据分析
// @Accept json
// @Produce json
// @Param request body selectPointRequest true "点位"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/analytics/select [post]
func (h *Handler) SelectPoint(c *gin.Context) {
	var req selectPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	switch {
	case req.Index != nil:
		sum, err := h.analytics.SelectIndex(*req.Index)
		if errors.Is(err, service.ErrPointOutOfRange) {
			response.BadRequest(c, err.Error())
			return
		}
		response.Success(c, gin.H{"hit": true, "summary": sum})
	case req.X != nil && req.Y != nil:
		sum, hit := h.analytics.SelectAt(*req.X, *req.Y)
		response.Success(c, gin.H{"hit": hit, "summary": sum})
	default:
		response.BadRequest(c, "index or x/y is required")
	}
}

// ShowAll 全部订单统计
// @Summary 总订单数与最佳日
// @Tags 数据分析
// @Produce json
// @Success 200 {object} response.Response{data=service.Summary}
// @Router /api/v1/analytics/show-all [post]
func (h *Handler) ShowAll(c *gin.Context) {
	response.Success(c, h.analytics.ShowAll())
}

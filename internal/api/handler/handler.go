package handler

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/delivery-admin/internal/api/middleware"
	"github.com/d60-Lab/delivery-admin/internal/service"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Templates 页面模板，由 router 注册到 gin
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.gohtml"))
}

// Handler 页面与 JSON API 共用的处理器
type Handler struct {
	dashboard *service.DashboardService
	analytics *service.AnalyticsService
	inventory *service.InventoryService
	activity  *service.ActivityRecorder
	auth      *service.AuthService
	refresh   time.Duration
}

func NewHandler(
	dashboard *service.DashboardService,
	analytics *service.AnalyticsService,
	inventory *service.InventoryService,
	activity *service.ActivityRecorder,
	auth *service.AuthService,
	refresh time.Duration,
) *Handler {
	return &Handler{
		dashboard: dashboard,
		analytics: analytics,
		inventory: inventory,
		activity:  activity,
		auth:      auth,
		refresh:   refresh,
	}
}

type pageData struct {
	Menus       []service.Menu
	Filters     []service.DateFilter
	Dashboard   service.DashboardView
	Analytics   service.AnalyticsView
	Inventory   service.InventoryState
	Refresh     int
	Staff       string
	ChartWidth  int
	ChartHeight int
}

func (h *Handler) page(c *gin.Context) pageData {
	d := pageData{
		Menus:       service.Menus,
		Filters:     service.DateFilters,
		Dashboard:   h.dashboard.View(),
		Staff:       c.GetString(middleware.StaffKey),
		ChartWidth:  service.ChartWidth,
		ChartHeight: service.ChartHeight,
	}
	switch {
	case d.Dashboard.Menu == service.MenuVisualData:
		// 图表随每次轮询重算，统计保存在服务端，刷新不会丢失
		d.Analytics = h.analytics.View()
		d.Refresh = int(h.refresh / time.Second)
	case d.Dashboard.Menu == service.MenuInventory:
		d.Inventory = h.inventory.View()
	case d.Dashboard.Menu.ShowsOrders() || d.Dashboard.Loading:
		d.Refresh = int(h.refresh / time.Second)
	}
	return d
}

// back 表单提交后回到看板页
func back(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

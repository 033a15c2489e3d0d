package api

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/delivery-admin/config"
	_ "github.com/d60-Lab/delivery-admin/docs"
	"github.com/d60-Lab/delivery-admin/internal/api/handler"
	"github.com/d60-Lab/delivery-admin/internal/api/middleware"
)

// NewRouter 注册页面与 /api/v1 路由；登录、健康检查和文档不需要鉴权
func NewRouter(cfg *config.Config, h *handler.Handler, auth middleware.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		otelgin.Middleware(cfg.Tracing.ServiceName),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)
	r.SetHTMLTemplate(handler.Templates())

	r.GET("/health", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.LoginForm)
	r.POST("/api/v1/auth/login", h.Login)

	authed := r.Group("", middleware.Auth(auth))
	authed.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })

	page := authed.Group("/dashboard")
	{
		page.GET("", h.DashboardPage)
		page.POST("/menu", h.SelectMenu)
		page.POST("/filter", h.SetDateFilter)
		page.POST("/orders/ship", h.ShipOrderForm)
		page.GET("/analytics/chart.svg", h.ChartSVG)
		page.POST("/analytics/filter", h.AnalyticsFilterForm)
		page.POST("/analytics/select", h.AnalyticsSelectForm)
		page.POST("/analytics/show-all", h.ShowAllForm)
		page.POST("/inventory/products", h.AddProductForm)
		page.POST("/inventory/quantity", h.UpdateQuantityForm)
	}

	v1 := authed.Group("/api/v1")
	{
		v1.GET("/orders", h.ListOrders)
		v1.POST("/orders/ship", h.ShipOrder)
		v1.GET("/analytics", h.GetAnalytics)
		v1.POST("/analytics/select", h.SelectPoint)
		v1.POST("/analytics/show-all", h.ShowAll)
		v1.GET("/inventory/products", h.ListProducts)
		v1.POST("/inventory/products", h.AddProduct)
		v1.POST("/inventory/quantity", h.UpdateQuantity)
		v1.GET("/activity", h.ListActivity)
	}
	return r
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/delivery-admin/internal/api/middleware"
	"github.com/d60-Lab/delivery-admin/pkg/response"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type loginPage struct {
	Username string
	Error    string
}

// LoginPage 未开启鉴权时直接进入看板
func (h *Handler) LoginPage(c *gin.Context) {
	if !h.auth.Enabled() {
		back(c)
		return
	}
	c.HTML(http.StatusOK, "login", loginPage{})
}

func (h *Handler) LoginForm(c *gin.Context) {
	if !h.auth.Enabled() {
		back(c)
		return
	}
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "login", loginPage{Username: req.Username, Error: "Username and password are required."})
		return
	}
	token, _, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login", loginPage{Username: req.Username, Error: "Invalid username or password."})
		return
	}
	h.setTokenCookie(c, token)
	back(c)
}

// Login 管理员登录
// @Summary 登录
// @Description 返回 JWT，同时写入 admin_token cookie
// @Tags 鉴权
// @Accept json
// @Produce json
// @Param request body loginRequest true "账号"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, exp, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}
	h.setTokenCookie(c, token)
	response.Success(c, gin.H{"token": token, "expires_at": exp})
}

// setTokenCookie cookie 有效期与 token TTL 一致
func (h *Handler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.auth.TTL().Seconds()), "/", "", false, true)
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok", "dashboard_loading": h.dashboard.State().Loading})
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/delivery-admin/pkg/response"
)

// ListActivity 最近的管理操作记录
// @Summary 操作记录
// @Tags 操作记录
// @Produce json
// @Param limit query int false "条数" default(50)
// @Success 200 {object} response.Response{data=[]model.Activity}
// @Failure 500 {object} response.Response
// @Router /api/v1/activity [get]
func (h *Handler) ListActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.activity.Recent(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, list)
}

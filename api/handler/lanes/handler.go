package lanes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/memory-lane/api/common"
	svcLanes "github.com/anoixa/memory-lane/internal/lanes"
)

// Handler 时间线处理器
type Handler struct {
	svc *svcLanes.Service
}

// NewHandler 创建新的时间线处理器
func NewHandler(svc *svcLanes.Service) *Handler {
	return &Handler{svc: svc}
}

// GetMemoryLane 获取时间线
// @Summary      Get a memory lane
// @Tags         memory-lanes
// @Produce      json
// @Param        id   path      string  true  "Memory lane ID"
// @Success      200  {object}  models.MemoryLane
// @Failure      404  {object}  common.ErrorResponse
// @Router       /memory-lanes/{id} [get]
func (h *Handler) GetMemoryLane(c *gin.Context) {
	lane, err := h.svc.GetMemoryLane(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, lane)
}

// UpdateMemoryLane 更新时间线描述
// @Summary      Update memory lane description
// @Tags         memory-lanes
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Memory lane ID"
// @Param        body  body      svcLanes.UpdateInput  true  "Description (null clears it)"
// @Success      200   {object}  models.MemoryLane
// @Failure      400   {object}  common.ErrorResponse
// @Failure      404   {object}  common.ErrorResponse
// @Router       /memory-lanes/{id} [put]
func (h *Handler) UpdateMemoryLane(c *gin.Context) {
	var req svcLanes.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	lane, err := h.svc.UpdateDescription(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, lane)
}

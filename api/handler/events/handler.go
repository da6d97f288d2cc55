package events

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/memory-lane/api/common"
	svcEvents "github.com/anoixa/memory-lane/internal/events"
	"github.com/anoixa/memory-lane/internal/pagination"
)

const msgInvalidBody = "Invalid request body"

// Handler 事件处理器
type Handler struct {
	svc *svcEvents.Service
}

// NewHandler 创建新的事件处理器
func NewHandler(svc *svcEvents.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateEvent 创建事件
// @Summary      Create an event
// @Description  Creates an event with at least one image inside the given memory lane
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body      svcEvents.CreateInput  true  "Event"
// @Success      201   {object}  models.Event
// @Failure      400   {object}  common.ErrorResponse
// @Failure      404   {object}  common.ErrorResponse
// @Router       /events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	var req svcEvents.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondCreated(c, event)
}

// GetEvent 获取事件及其图片
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        eventId  path      string  true  "Event ID"
// @Success      200      {object}  models.Event
// @Failure      404      {object}  common.ErrorResponse
// @Router       /events/{eventId} [get]
func (h *Handler) GetEvent(c *gin.Context) {
	event, err := h.svc.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, event)
}

// UpdateEvent 更新事件，images 为完整的目标集合
// @Summary      Update an event
// @Description  Replaces title, description, timestamp and reconciles the image set
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventId  path      string                 true  "Event ID"
// @Param        body     body      svcEvents.UpdateInput  true  "Event"
// @Success      200      {object}  models.Event
// @Failure      400      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Failure      409      {object}  common.ErrorResponse
// @Router       /events/{eventId} [put]
func (h *Handler) UpdateEvent(c *gin.Context) {
	var req svcEvents.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	event, err := h.svc.UpdateEvent(c.Request.Context(), c.Param("eventId"), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, event)
}

// DeleteEvent 删除事件及其图片
// @Summary      Delete an event
// @Tags         events
// @Produce      json
// @Param        eventId  path      string  true  "Event ID"
// @Success      200      {object}  common.MessageResponse
// @Failure      404      {object}  common.ErrorResponse
// @Router       /events/{eventId} [delete]
func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.svc.DeleteEvent(c.Request.Context(), c.Param("eventId")); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondMessage(c, "Event deleted successfully")
}

// ListEvents 分页列出时间线上的事件
// @Summary      List events of a memory lane
// @Tags         events
// @Produce      json
// @Param        id     path      string  true   "Memory lane ID"
// @Param        page   query     int     false  "Page (default 1)"
// @Param        limit  query     int     false  "Page size (default 10)"
// @Param        sort   query     string  false  "older or newer (default older)"
// @Success      200    {object}  svcEvents.Page
// @Failure      400    {object}  common.ErrorResponse
// @Router       /memory-lanes/{id}/events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	q, err := pagination.Parse(c.Query("page"), c.Query("limit"), c.Query("sort"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	page, err := h.svc.ListEvents(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, page)
}

// ListAllEvents 列出时间线上的全部事件，最新的在前
// @Summary      List all events of a memory lane
// @Tags         events
// @Produce      json
// @Param        id   path     string  true  "Memory lane ID"
// @Success      200  {array}  models.Event
// @Router       /memory-lanes/{id}/events/all [get]
func (h *Handler) ListAllEvents(c *gin.Context) {
	events, err := h.svc.ListAllEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, events)
}

package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/memory-lane/api/common"
	"github.com/anoixa/memory-lane/api/middleware"
	svcUsers "github.com/anoixa/memory-lane/internal/users"
)

// Handler 用户处理器
type Handler struct {
	svc *svcUsers.Service
}

// NewHandler 创建新的用户处理器
func NewHandler(svc *svcUsers.Service) *Handler {
	return &Handler{svc: svc}
}

// Signup 注册用户并创建其时间线
// @Summary      Sign up
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      svcUsers.SignupInput  true  "User"
// @Success      201   {object}  svcUsers.AuthResult
// @Failure      400   {object}  common.ErrorResponse
// @Failure      409   {object}  common.ErrorResponse
// @Router       /users/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req svcUsers.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondCreated(c, result)
}

// Login 按邮箱登录
// @Summary      Log in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      svcUsers.LoginInput  true  "Credentials"
// @Success      200   {object}  svcUsers.AuthResult
// @Failure      400   {object}  common.ErrorResponse
// @Failure      404   {object}  common.ErrorResponse
// @Router       /users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req svcUsers.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, result)
}

// Me 当前会话的用户
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  common.ErrorResponse
// @Router       /users/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, user)
}

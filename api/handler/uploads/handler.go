package uploads

import (
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/anoixa/memory-lane/api/common"
	"github.com/anoixa/memory-lane/internal/upload"
	"github.com/anoixa/memory-lane/utils"
	"github.com/anoixa/memory-lane/utils/format"
)

// multipart 表单头部、字段等额外开销
const formOverhead = 1 << 20

// Handler 上传与文件访问处理器
type Handler struct {
	svc *upload.Service
}

// NewHandler 创建新的上传处理器
func NewHandler(svc *upload.Service) *Handler {
	return &Handler{svc: svc}
}

// UploadImages 批量上传图片
// @Summary      Upload images
// @Description  Stores up to the configured number of images and returns url/name pairs usable as event images
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "Image files"
// @Success      201    {array}   upload.Result
// @Failure      400    {object}  common.ErrorResponse
// @Failure      413    {object}  common.ErrorResponse
// @Router       /uploads [post]
func (h *Handler) UploadImages(c *gin.Context) {
	limit := int64(h.svc.MaxFiles())*h.svc.MaxBytes() + formOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondError(c, http.StatusRequestEntityTooLarge,
				"Upload exceeds the maximum request size of "+format.HumanReadableSize(limit))
			return
		}
		common.RespondError(c, http.StatusBadRequest, "Invalid form data")
		return
	}
	defer func() { _ = form.RemoveAll() }()

	results, err := h.svc.Upload(c.Request.Context(), form.File[upload.FieldName])
	if err != nil {
		if utils.IsClientDisconnect(err) {
			log.WithField("request_id", c.GetString(common.RequestIDKey)).Debug("Client went away during upload")
			c.Abort()
			return
		}
		common.RespondAppError(c, err)
		return
	}

	common.RespondCreated(c, results)
}

// ServeFile 读取已上传的文件
// @Summary      Get an uploaded file
// @Tags         uploads
// @Produce      octet-stream
// @Param        path  path      string  true  "Storage path"
// @Success      200   {file}    file
// @Failure      404   {object}  common.ErrorResponse
// @Router       /files/{path} [get]
func (h *Handler) ServeFile(c *gin.Context) {
	obj, err := h.svc.Open(c.Request.Context(), c.Param("path"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	defer func() { _ = obj.Close() }()

	if obj.ContentType != "" {
		c.Header("Content-Type", obj.ContentType)
	}
	c.Header("Cache-Control", "public, max-age=2592000, immutable")

	if rs, ok := obj.Body.(io.ReadSeeker); ok {
		http.ServeContent(c.Writer, c.Request, path.Base(c.Param("path")), obj.ModTime, rs)
		return
	}

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}

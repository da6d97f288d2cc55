package core

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/storage"
)

const healthCheckTimeout = 3 * time.Second

// Pinger 数据库连接检查，*sql.DB 实现此接口
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db        Pinger
	storage   *storage.Factory
	startTime time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db Pinger, storageFactory *storage.Factory) *HealthHandler {
	return &HealthHandler{
		db:        db,
		storage:   storageFactory,
		startTime: time.Now(),
	}
}

// Handle 检查数据库与所有存储后端，任一失败返回 503
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{"database": h.checkDatabase(ctx)}
	for name, result := range h.checkStorage(ctx) {
		checks["storage:"+name] = result
	}

	status, httpStatus := "ok", http.StatusOK
	for name, result := range checks {
		if result != "ok" {
			status, httpStatus = "degraded", http.StatusServiceUnavailable
			log.WithField("check", name).Warnf("Health check failed: %v", result)
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return "not initialized"
	}
	if err := h.db.PingContext(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkStorage(ctx context.Context) map[string]string {
	if h.storage == nil {
		return map[string]string{"default": "not initialized"}
	}

	results := make(map[string]string)
	for name, err := range h.storage.Health(ctx) {
		if err != nil {
			results[name] = "error: " + err.Error()
			continue
		}
		results[name] = "ok"
	}
	return results
}

// Package auth 会话身份：登录后签发的令牌携带用户与其时间线
package auth

import (
	"github.com/anoixa/memory-lane/database/models"
)

// Session 当前请求的用户身份，由中间件放入 gin.Context
type Session struct {
	UserID       string `mapstructure:"user_id" json:"userId"`
	Email        string `mapstructure:"email" json:"email"`
	MemoryLaneID string `mapstructure:"memory_lane_id" json:"memoryLaneId"`
}

// NewSession 从用户构造会话
func NewSession(user *models.User) Session {
	s := Session{UserID: user.ID, Email: user.Email}
	if user.MemoryLane != nil {
		s.MemoryLaneID = user.MemoryLane.ID
	}
	return s
}

// Package users 注册与登录
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anoixa/memory-lane/database/models"
	"github.com/anoixa/memory-lane/database/repo/users"
	"github.com/anoixa/memory-lane/internal/apperr"
	"github.com/anoixa/memory-lane/internal/auth"
	"github.com/anoixa/memory-lane/internal/validation"
	"github.com/anoixa/memory-lane/utils"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultLaneDescription = "A collection of my memories"

// SignupInput 注册请求
type SignupInput struct {
	Name  string `json:"name" validate:"required,notblank,min=2"`
	Email string `json:"email" validate:"required,email"`
}

// LoginInput 登录请求
type LoginInput struct {
	Email string `json:"email" validate:"required,email"`
}

// Validate 校验注册请求
func (in *SignupInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	return validation.Struct(in)
}

// Validate 校验登录请求
func (in *LoginInput) Validate() error {
	in.Email = normalizeEmail(in.Email)
	return validation.Struct(in)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthResult 注册、登录的结果：用户及其会话令牌
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Service 用户服务层
type Service struct {
	repo *users.Repository
	jwt  *auth.JWTService
}

// NewService 创建新的用户服务
func NewService(repo *users.Repository, jwt *auth.JWTService) *Service {
	return &Service{repo: repo, jwt: jwt}
}

// Signup 创建用户并在同一事务中创建其时间线
func (s *Service) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	desc := defaultLaneDescription
	user := &models.User{Name: in.Name, Email: in.Email}
	lane := &models.MemoryLane{
		Title:       fmt.Sprintf("%s's Memory Lane", in.Name),
		Description: &desc,
	}

	if err := s.repo.CreateWithMemoryLane(ctx, user, lane); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Storage("failed to create user", err)
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"email":   utils.SanitizeLogEmail(user.Email),
	}).Info("User signed up")
	return s.issue(user)
}

// Login 按邮箱查找用户并签发会话
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Storage("failed to load user", err)
	}

	return s.issue(user)
}

// Me 返回会话对应的用户
func (s *Service) Me(ctx context.Context, session *auth.Session) (*models.User, error) {
	user, err := s.repo.FindByIDWithLane(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Storage("failed to load user", err)
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*AuthResult, error) {
	token, _, err := s.jwt.Issue(auth.NewSession(user))
	if err != nil {
		return nil, apperr.Storage("failed to issue session", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

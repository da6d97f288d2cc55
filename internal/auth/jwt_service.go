package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/utils/generator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
)

const (
	defaultSessionTTL = 7 * 24 * time.Hour
	minSecretLength   = 32
	issuer            = "memory-lane"
)

// ErrInvalidToken 令牌无效或已过期
var ErrInvalidToken = errors.New("invalid or expired session token")

// TokenConfig 保存 JWT 配置
type TokenConfig struct {
	Secret    []byte
	ExpiresIn time.Duration
}

// JWTService 会话令牌签发与解析
type JWTService struct {
	config TokenConfig
	mutex  sync.RWMutex
	now    func() time.Time
}

// NewJWTService 根据配置创建 JWT 服务，未配置密钥时生成进程内随机密钥
func NewJWTService(cfg *config.Config) (*JWTService, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		random, err := generator.GenerateRandomToken(minSecretLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = random
		log.Warn("[JWT] session_secret not set, using a random secret; sessions end on restart")
	}
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d characters long, got %d", minSecretLength, len(secret))
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return NewJWTServiceWithConfig(TokenConfig{Secret: []byte(secret), ExpiresIn: ttl}), nil
}

// NewJWTServiceWithConfig 直接使用给定配置
func NewJWTServiceWithConfig(cfg TokenConfig) *JWTService {
	return &JWTService{config: cfg, now: time.Now}
}

// GetConfig 获取当前 JWT 配置（只读）
func (s *JWTService) GetConfig() TokenConfig {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return TokenConfig{
		Secret:    append([]byte{}, s.config.Secret...),
		ExpiresIn: s.config.ExpiresIn,
	}
}

// Issue 为会话签发令牌
func (s *JWTService) Issue(session Session) (string, time.Time, error) {
	cfg := s.GetConfig()
	if len(cfg.Secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret is not initialized")
	}

	now := s.now()
	expiry := now.Add(cfg.ExpiresIn)
	claims := jwt.MapClaims{
		"user_id":        session.UserID,
		"email":          session.Email,
		"memory_lane_id": session.MemoryLaneID,
		"iss":            issuer,
		"exp":            expiry.Unix(),
		"iat":            now.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expiry, nil
}

// ParseToken 解析和验证 JWT 令牌
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	cfg := s.GetConfig()
	if len(cfg.Secret) == 0 {
		return nil, errors.New("JWT secret is not initialized")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseSession 解析令牌并还原会话
func (s *JWTService) ParseSession(tokenString string) (*Session, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := mapstructure.Decode(map[string]interface{}(claims), &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if session.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &session, nil
}

// Package service 提供目录快照加载与 bearer 令牌服务。
package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/config"
	"github.com/MorseWayne/gift_market/internal/domain"
)

// JWT相关错误定义
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenNotReady = errors.New("token used before valid")
	ErrNoSecret      = errors.New("jwt secret is not configured")
)

// Claims 定义访问令牌载荷
type Claims struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	TelegramID string `json:"telegram_id,omitempty"`
	jwt.RegisteredClaims
}

// Viewer 返回令牌对应的用户
func (c *Claims) Viewer() *domain.Viewer {
	return &domain.Viewer{UserID: c.UserID, Username: c.Username, TelegramID: c.TelegramID}
}

// JWTService 定义令牌服务接口
type JWTService interface {
	IssueAccessToken(viewer *domain.Viewer) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewJWTService 创建令牌服务实例
func NewJWTService(cfg *config.Config, logger *zap.Logger) JWTService {
	return &jwtService{
		secret: []byte(cfg.JWT.Secret),
		issuer: cfg.App.Name,
		ttl:    cfg.JWT.AccessTokenTTL,
		logger: logger,
		now:    time.Now,
	}
}

// IssueAccessToken 为用户签发 HS256 访问令牌，主要用于本地联调
func (s *jwtService) IssueAccessToken(viewer *domain.Viewer) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	now := s.now()
	claims := &Claims{
		UserID:     viewer.UserID,
		Username:   viewer.Username,
		TelegramID: viewer.TelegramID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(viewer.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return "", fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("access token issued",
		zap.Int64("user_id", viewer.UserID),
		zap.String("username", viewer.Username),
		zap.Duration("ttl", s.ttl),
	)
	return signed, nil
}

// ValidateAccessToken 校验签名、有效期与发行者
func (s *jwtService) ValidateAccessToken(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrNoSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotReady
		}
		s.logger.Debug("token validation failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != s.issuer {
		s.logger.Warn("token issuer mismatch",
			zap.String("expected", s.issuer),
			zap.String("actual", claims.Issuer),
		)
		return nil, ErrInvalidToken
	}
	return claims, nil
}

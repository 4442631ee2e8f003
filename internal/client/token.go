package client

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/peterbourgon/diskv/v3"
)

// TokenKey 为令牌的固定存储键
const TokenKey = "quant_auth_token"

// TokenStore 持久化 bearer 令牌，空串表示未登录
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
}

// MemoryTokenStore 进程内令牌存储
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore 创建内存令牌存储
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryTokenStore) SetToken(token string) error {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
	return nil
}

// DiskTokenStore 使用 diskv 将令牌保存在本地目录
type DiskTokenStore struct {
	d *diskv.Diskv
}

// NewDiskTokenStore 创建基于目录的令牌存储
func NewDiskTokenStore(dir string) *DiskTokenStore {
	return &DiskTokenStore{d: diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 4 * 1024,
		FilePerm:     0o600,
		PathPerm:     0o700,
	})}
}

// Token 读取令牌，不存在时返回空串
func (s *DiskTokenStore) Token() (string, error) {
	val, err := s.d.Read(TokenKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(val)), nil
}

// SetToken 写入令牌，空串表示删除
func (s *DiskTokenStore) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		if err := s.d.Erase(TokenKey); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return s.d.Write(TokenKey, []byte(token))
}

// tokenExpired 判断 JWT 的 exp 是否已过期。
// 令牌不是 JWT 或没有 exp 时视为未过期，签名由后端校验。
func tokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}

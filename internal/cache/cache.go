// Package cache 提供缓存抽象：内存、空实现与 Redis。
// 值以 JSON 序列化存储。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// 缓存错误
var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheDisabled = errors.New("cache disabled")
)

// Cache 定义缓存操作接口
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// MemoryCache 进程内缓存实现，用于单实例部署和测试
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryCacheItem
	now  func() time.Time
}

type memoryCacheItem struct {
	value      []byte
	expiration time.Time
}

// NewMemoryCache 创建内存缓存实例
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryCacheItem),
		now:  time.Now,
	}
}

// lookup 返回未过期的条目，过期条目会被删除
func (m *MemoryCache) lookup(key string) (memoryCacheItem, bool) {
	m.mu.RLock()
	item, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return memoryCacheItem{}, false
	}
	if !item.expiration.IsZero() && m.now().After(item.expiration) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return memoryCacheItem{}, false
	}
	return item, true
}

// Get 获取缓存值，未命中时返回 ErrCacheMiss
func (m *MemoryCache) Get(_ context.Context, key string, dest any) error {
	item, ok := m.lookup(key)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(item.value, dest)
}

// Set 设置缓存值，expiration 为 0 表示不过期
func (m *MemoryCache) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	item := memoryCacheItem{value: data}
	if expiration > 0 {
		item.expiration = m.now().Add(expiration)
	}
	m.mu.Lock()
	m.data[key] = item
	m.mu.Unlock()
	return nil
}

// Del 删除缓存值
func (m *MemoryCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Exists 检查键是否存在
func (m *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.lookup(key)
	return ok, nil
}

// Ping 检查连接
func (m *MemoryCache) Ping(context.Context) error {
	return nil
}

// Close 清空缓存
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	m.data = make(map[string]memoryCacheItem)
	m.mu.Unlock()
	return nil
}

// NullCache 空缓存实现（禁用缓存时使用）
type NullCache struct{}

// NewNullCache 创建空缓存实例
func NewNullCache() *NullCache {
	return &NullCache{}
}

func (n *NullCache) Get(context.Context, string, any) error {
	return ErrCacheDisabled
}

func (n *NullCache) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (n *NullCache) Del(context.Context, ...string) error {
	return nil
}

func (n *NullCache) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func (n *NullCache) Ping(context.Context) error {
	return nil
}

func (n *NullCache) Close() error {
	return nil
}

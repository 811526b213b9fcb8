// Package cache 提供带 TTL 的本地内存缓存。
package cache

import (
	"sync"
	"time"
)

// LocalCache 本地内存缓存。
//
// 读取走 sync.Map 不加锁，条目带 TTL 过期，后台定期清理。
// 用于缓存表达式的编译结果等重建代价高的对象。
type LocalCache struct {
	data sync.Map
	ttl  time.Duration
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewLocalCache 创建本地缓存，ttl 为条目默认过期时间。
func NewLocalCache(ttl time.Duration) *LocalCache {
	c := &LocalCache{ttl: ttl}
	go c.cleanupLoop()
	return c
}

// Get 获取缓存值。
func (c *LocalCache) Get(key string) (interface{}, bool) {
	val, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}

	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.data.Delete(key)
		return nil, false
	}
	return entry.value, true
}

// Set 设置缓存值，ttl 为 0 时使用默认值。
func (c *LocalCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.ttl
	}
	c.data.Store(key, &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
}

// Delete 删除缓存值。
func (c *LocalCache) Delete(key string) {
	c.data.Delete(key)
}

// cleanupLoop 定期清理过期条目。
func (c *LocalCache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.data.Range(func(key, value interface{}) bool {
			if now.After(value.(*cacheEntry).expiresAt) {
				c.data.Delete(key)
			}
			return true
		})
	}
}

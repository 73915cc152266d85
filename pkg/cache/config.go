package cache

import (
	"fmt"
	"time"
)

type redisSettings struct {
	addr     string
	password string
	db       int
	poolSize int
	prefix   string
	dial     time.Duration
}

// RedisOption configures NewRedisCache.
type RedisOption func(*redisSettings)

// WithRedisAddr sets host and port.
func WithRedisAddr(host string, port int) RedisOption {
	return func(s *redisSettings) { s.addr = fmt.Sprintf("%s:%d", host, port) }
}

func WithRedisAuth(password string, db int) RedisOption {
	return func(s *redisSettings) {
		s.password = password
		s.db = db
	}
}

// WithRedisPoolSize caps open connections; values below 1 keep the default.
func WithRedisPoolSize(n int) RedisOption {
	return func(s *redisSettings) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithRedisPrefix namespaces every key; "" disables it.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *redisSettings) { s.prefix = prefix }
}

type memorySettings struct {
	maxSize int
	cleanup time.Duration
}

// MemoryOption configures NewMemoryCache.
type MemoryOption func(*memorySettings)

// WithMemoryMaxSize bounds the entry count; the least recently read entry is
// evicted first.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(s *memorySettings) { s.maxSize = size }
}

// WithMemoryCleanup sets how often expired entries are swept.
func WithMemoryCleanup(interval time.Duration) MemoryOption {
	return func(s *memorySettings) { s.cleanup = interval }
}

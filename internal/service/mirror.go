package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Mirror 热点读集的快照存储。每次写操作后整表重写，
// 读路径优先取快照、缺失时回源数据库并回填。
type Mirror interface {
	Put(ctx context.Context, key string, v interface{}) error
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	Del(ctx context.Context, key string) error
}

const (
	publishedModulesKey = "mirror:modules:published"
	mirrorTTL           = 24 * time.Hour
)

func enrollmentsKey(userID uint) string {
	return fmt.Sprintf("mirror:enrollments:%d", userID)
}

type RedisMirror struct {
	rdb *redis.Client
}

func NewRedisMirror(rdb *redis.Client) *RedisMirror {
	return &RedisMirror{rdb: rdb}
}

func (m *RedisMirror) Put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, key, data, mirrorTTL).Err()
}

func (m *RedisMirror) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := m.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		// 快照损坏按缺失处理，回源后覆盖
		return false, nil
	}
	return true, nil
}

func (m *RedisMirror) Del(ctx context.Context, key string) error {
	return m.rdb.Del(ctx, key).Err()
}

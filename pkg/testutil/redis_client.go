package testutil

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// MockRedisClient is an in-memory stand-in for xredis.Client with real
// key/set/zset behavior, so reconciler and leaderboard tests see their own
// writes.
type MockRedisClient struct {
	mutex  sync.Mutex
	values map[string]string
	sets   map[string]map[string]bool
	zsets  map[string]map[string]float64
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		values: make(map[string]string),
		sets:   make(map[string]map[string]bool),
		zsets:  make(map[string]map[string]float64),
	}
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	_, ok := m.values[key]
	return ok, nil
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, key := range keys {
		delete(m.values, key)
		delete(m.sets, key)
		delete(m.zsets, key)
	}
	return nil
}

func (m *MockRedisClient) ZIncrBy(ctx context.Context, key string, incr int64, member string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]float64)
	}
	m.zsets[key][member] += float64(incr)
	return nil
}

func (m *MockRedisClient) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]goredis.Z, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	sorted := m.sortedZ(key)
	if offset >= len(sorted) {
		return nil, nil
	}

	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (m *MockRedisClient) ZRevRank(ctx context.Context, key string, member string) (uint64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, z := range m.sortedZ(key) {
		if z.Member == member {
			return uint64(i), nil
		}
	}
	return 0, goredis.Nil
}

func (m *MockRedisClient) sortedZ(key string) []goredis.Z {
	sorted := []goredis.Z{}
	for member, score := range m.zsets[key] {
		sorted = append(sorted, goredis.Z{Member: member, Score: score})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Member.(string) > sorted[j].Member.(string)
	})
	return sorted
}

func (m *MockRedisClient) SAdd(ctx context.Context, key string, members ...string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.sets[key] == nil {
		m.sets[key] = make(map[string]bool)
	}
	for _, member := range members {
		m.sets[key][member] = true
	}
	return nil
}

func (m *MockRedisClient) SRem(ctx context.Context, key string, members ...string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, member := range members {
		delete(m.sets[key], member)
	}
	return nil
}

func (m *MockRedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	members := []string{}
	for member := range m.sets[key] {
		members = append(members, member)
	}
	sort.Strings(members)
	return members, nil
}

func (m *MockRedisClient) SIsMember(ctx context.Context, key, member string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.sets[key][member], nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.values[key] = value
	return nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	value, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (m *MockRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return m.Set(ctx, key, string(b))
}

func (m *MockRedisClient) GetObj(ctx context.Context, key string, v any) error {
	s, err := m.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(s), v)
}

package xexec

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// 重试历史容量上限
const (
	// maxTrackedOperations 同时跟踪的操作 id 数，超出按 LRU 淘汰
	maxTrackedOperations = 128

	// maxRecordsPerOperation 单个操作保留的记录数，超出丢弃最旧的
	maxRecordsPerOperation = 10
)

// RetryRecord 一次失败尝试的记录
type RetryRecord struct {
	// At 记录时间
	At time.Time

	// Success 该次尝试是否成功（成功会清空历史，常态下为 false）
	Success bool

	// Detail 失败详情
	Detail string
}

// historyStore 按操作 id 隔离的有界重试历史
//
// 操作维度用 LRU 淘汰，记录维度用定长环。成功会删除整个条目，
// 所以历史只反映最近一段连续失败。
type historyStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, []RetryRecord]
}

func newHistoryStore() *historyStore {
	// 容量为正的常量，构造不会失败
	cache, _ := lru.New[string, []RetryRecord](maxTrackedOperations)
	return &historyStore{cache: cache}
}

// record 追加一条记录
func (h *historyStore) record(id string, rec RetryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, _ := h.cache.Get(id)
	records = append(records, rec)
	if len(records) > maxRecordsPerOperation {
		records = records[len(records)-maxRecordsPerOperation:]
	}
	h.cache.Add(id, records)
}

// get 返回操作的记录副本
func (h *historyStore) get(id string) []RetryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, ok := h.cache.Get(id)
	if !ok {
		return nil
	}
	out := make([]RetryRecord, len(records))
	copy(out, records)
	return out
}

// clear 删除操作的条目
func (h *historyStore) clear(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache.Remove(id)
}

// purge 清空全部条目
func (h *historyStore) purge() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache.Purge()
}

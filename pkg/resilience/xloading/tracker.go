package xloading

import "sync"

// Tracker 并发加载状态跟踪器
//
// 并发安全。零值不可用，请通过 NewTracker 创建。
type Tracker struct {
	mu          sync.Mutex
	loading     map[string]bool
	subscribers map[string]map[int]func(bool)
	nextSubID   int
}

// NewTracker 创建加载状态跟踪器
func NewTracker() *Tracker {
	return &Tracker{
		loading:     make(map[string]bool),
		subscribers: make(map[string]map[int]func(bool)),
	}
}

// Set 设置操作的加载状态，并通知该 id 的订阅者
//
// 状态未变化时不触发通知。
func (t *Tracker) Set(id string, loading bool) {
	t.mu.Lock()
	if t.loading[id] == loading {
		t.mu.Unlock()
		return
	}
	if loading {
		t.loading[id] = true
	} else {
		delete(t.loading, id)
	}

	// 复制回调列表，通知在锁外进行，避免回调中再次调用 Tracker 死锁
	var callbacks []func(bool)
	for _, cb := range t.subscribers[id] {
		callbacks = append(callbacks, cb)
	}
	t.mu.Unlock()

	for _, cb := range callbacks {
		cb(loading)
	}
}

// IsLoading 返回操作是否处于加载中
func (t *Tracker) IsLoading(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading[id]
}

// AnyLoading 返回是否存在任一加载中的操作
func (t *Tracker) AnyLoading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.loading) > 0
}

// Subscribe 订阅指定 id 的状态变化，返回取消订阅函数
//
// 只有 id 对应的状态变化才会触发回调。disposer 可安全地多次调用。
func (t *Tracker) Subscribe(id string, cb func(loading bool)) func() {
	if cb == nil {
		return func() {}
	}

	t.mu.Lock()
	if t.subscribers[id] == nil {
		t.subscribers[id] = make(map[int]func(bool))
	}
	subID := t.nextSubID
	t.nextSubID++
	t.subscribers[id][subID] = cb
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if subs, ok := t.subscribers[id]; ok {
			delete(subs, subID)
			if len(subs) == 0 {
				delete(t.subscribers, id)
			}
		}
	}
}

// Reset 清除加载状态
//
// 不带参数时清除全部；带参数时只清除指定 id。
// 被清除且原本处于加载中的 id 会收到一次 false 通知。
func (t *Tracker) Reset(ids ...string) {
	if len(ids) == 0 {
		t.mu.Lock()
		for id := range t.loading {
			ids = append(ids, id)
		}
		t.mu.Unlock()
	}
	for _, id := range ids {
		t.Set(id, false)
	}
}

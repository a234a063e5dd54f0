package xslotconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// OnChange 配置变更回调
//
// 重载并校验成功时 cfg 为新配置、err 为 nil；重载或校验失败时
// cfg 为 nil、err 描述原因，调用方应继续使用旧配置。
type OnChange func(cfg *Config, err error)

// WatchOption 监视器配置选项
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// WithDebounce 设置防抖时间
//
// 指定时间内的多次变更只触发一次重载，默认 100ms。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watcher 配置文件监视器
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange OnChange
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// Watch 监视配置文件并在变更时重载
//
// 监视的是文件所在目录而非文件本身：编辑器保存时可能先删除再创建，
// 直接监视文件会丢失事件。变更经防抖后重新加载并校验，结果通过
// onChange 通知。ctx 取消或调用 Stop 都会停止监视。
func Watch(ctx context.Context, path string, onChange OnChange, opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if onChange == nil {
		return nil, errors.New("xslotconf: onChange callback cannot be nil")
	}
	if _, err := detectFormat(path); err != nil {
		return nil, err
	}

	options := &watchOptions{debounce: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(options)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xslotconf: failed to create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		closeErr := fsWatcher.Close()
		return nil, errors.Join(
			fmt.Errorf("xslotconf: failed to watch directory %s: %w", dir, err),
			closeErr,
		)
	}

	wctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		path:     path,
		watcher:  fsWatcher,
		onChange: onChange,
		debounce: options.debounce,
		ctx:      wctx,
		cancel:   cancel,
	}
	go w.run()
	return w, nil
}

// Stop 停止监视，幂等
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) run() {
	filename := filepath.Base(w.path)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, filename)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.onChange(nil, fmt.Errorf("xslotconf: watch error: %w", err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, filename string) {
	if filepath.Base(event.Name) != filename {
		return
	}
	// Write 直接修改；Create 部分编辑器先建新文件；
	// Rename 原子写入（写临时文件后 rename）
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.ctx.Done():
			return
		default:
		}
		// Load 内部已完成校验，失败时 cfg 为 nil
		cfg, err := Load(w.path)
		w.onChange(cfg, err)
	})
}

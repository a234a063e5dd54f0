package xexec

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

// BatchItem 批量执行的单个条目
type BatchItem struct {
	// ID 操作 id，空时自动生成 uuid
	ID string

	// Critical 标记关键条目：失败时取消其余在途条目
	Critical bool

	// Action 要执行的动作
	Action func(ctx context.Context) (any, error)
}

// BatchResult 单个条目的执行结果
type BatchResult struct {
	// ID 条目的操作 id（含自动生成的）
	ID string

	// Result 动作返回值（Err 为 nil 时有效）
	Result any

	// Err 条目的最终错误
	Err error
}

// ExecuteBatch 并发执行一组条目
//
// 并发度由 WithBatchConcurrency 控制（默认 3），每个条目独立走完整的
// Execute 管线（各自的熔断器、重试历史与加载状态）。关键条目失败时
// 取消其余在途条目的 context 并返回该条目的错误；非关键条目的失败
// 只记录在对应的 BatchResult 里。
//
// 返回的切片与 items 等长且顺序一致。
func (e *Executor) ExecuteBatch(ctx context.Context, items []BatchItem, opts ...CallOption) ([]BatchResult, error) {
	if e == nil {
		return nil, ErrNilExecutor
	}
	if ctx == nil {
		return nil, ErrNilContext
	}
	if len(items) == 0 {
		return nil, nil
	}

	o := buildCallOptions(opts)

	ctx, span := startSpan(ctx, e.tracer, spanNameBatch,
		trace.WithAttributes(attribute.Int(attrBatchSize, len(items))))
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(o.batchConcurrency)
	results := make([]BatchResult, len(items))

	var (
		wg          sync.WaitGroup
		once        sync.Once
		criticalErr error
	)

	for i := range items {
		item := items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Action == nil {
			results[i] = BatchResult{ID: item.ID, Err: ErrNilAction}
			continue
		}

		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				// 关键条目失败后在途取消，或外层 ctx 结束
				results[i] = BatchResult{ID: item.ID, Err: e.classifyAttempt(ctx, item.ID, err)}
				return
			}
			defer sem.Release(1)

			v, err := Execute(ctx, e, item.ID, item.Action, opts...)
			results[i] = BatchResult{ID: item.ID, Result: v, Err: err}

			if err != nil && item.Critical {
				once.Do(func() {
					criticalErr = err
					cancel()
				})
			}
		}(i, item)
	}
	wg.Wait()

	if criticalErr != nil {
		setSpanError(span, criticalErr)
		return results, criticalErr
	}
	setSpanOK(span)
	return results, nil
}

package xexec

import "errors"

// 参数校验错误
var (
	// ErrNilExecutor 传入的 Executor 为 nil
	ErrNilExecutor = errors.New("xexec: executor cannot be nil")

	// ErrNilContext 传入的 context 为 nil
	ErrNilContext = errors.New("xexec: context cannot be nil")

	// ErrEmptyOperationID 操作 id 为空
	ErrEmptyOperationID = errors.New("xexec: operation id cannot be empty")

	// ErrNilAction 传入的动作函数为 nil
	ErrNilAction = errors.New("xexec: action cannot be nil")

	// ErrNilSubmit 交易提交函数为 nil
	ErrNilSubmit = errors.New("xexec: submit function cannot be nil")

	// ErrNilConnection 账本连接为 nil
	ErrNilConnection = errors.New("xexec: connection cannot be nil")
)

package xlog

import (
	"context"
	"io"
	"log/slog"
	"os"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Level 日志级别，复用 slog 的级别定义
type Level = slog.Level

// 常用级别
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger 日志接口
//
// 所有方法都需要 context.Context 参数，确保追踪信息正确传播。
type Logger interface {
	// Debug 记录 Debug 级别日志
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)

	// Info 记录 Info 级别日志
	Info(ctx context.Context, msg string, attrs ...slog.Attr)

	// Warn 记录 Warn 级别日志
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)

	// Error 记录 Error 级别日志
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回带额外属性的派生 Logger
	// 派生 logger 共享父级的 LevelVar，动态级别变更会同步生效
	With(attrs ...slog.Attr) Logger
}

// Leveler 级别控制接口
//
// 与 Logger 分离，通过类型断言检查具体实现是否支持动态级别控制。
type Leveler interface {
	// SetLevel 动态设置日志级别，运行时生效
	SetLevel(level Level)

	// GetLevel 获取当前日志级别
	GetLevel() Level
}

// LoggerWithLevel 组合接口：Logger + Leveler
type LoggerWithLevel interface {
	Logger
	Leveler
}

// 编译时接口检查
var (
	_ LoggerWithLevel = (*slogLogger)(nil)
	_ Logger          = (*nopLogger)(nil)
)

// Options 日志配置
type Options struct {
	level    Level
	json     bool
	writer   io.Writer
	rotation *lumberjack.Logger
}

// Option 配置选项
type Option func(*Options)

// WithLevel 设置初始日志级别，默认 Info
func WithLevel(level Level) Option {
	return func(o *Options) {
		o.level = level
	}
}

// WithJSON 使用 JSON 输出格式，默认为文本格式
func WithJSON() Option {
	return func(o *Options) {
		o.json = true
	}
}

// WithWriter 设置输出目标，默认 os.Stderr
// 传入 nil 会被静默忽略
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithRotation 使用轮转文件作为输出目标
//
// filename: 日志文件路径
// maxSizeMB: 单文件最大体积（MB），超过后轮转
// maxBackups: 保留的历史文件数
// maxAgeDays: 历史文件最长保留天数
//
// 与 WithWriter 同时设置时，以最后一个生效的选项为准。
func WithRotation(filename string, maxSizeMB, maxBackups, maxAgeDays int) Option {
	return func(o *Options) {
		o.rotation = &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
	}
}

// slogLogger Logger 接口的 slog 实现
type slogLogger struct {
	handler  slog.Handler
	levelVar *slog.LevelVar
}

// New 创建日志实例
//
// 默认配置：Info 级别、文本格式、输出到 os.Stderr。
func New(opts ...Option) LoggerWithLevel {
	o := &Options{
		level:  LevelInfo,
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	w := o.writer
	if o.rotation != nil {
		w = o.rotation
	}

	lv := &slog.LevelVar{}
	lv.Set(o.level)

	hopts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	if o.json {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}

	return &slogLogger{handler: h, levelVar: lv}
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if !l.handler.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(timeNow(), level, msg, 0)
	r.AddAttrs(attrs...)
	_ = l.handler.Handle(ctx, r)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelDebug, msg, attrs)
}

func (l *slogLogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelInfo, msg, attrs)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelWarn, msg, attrs)
}

func (l *slogLogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelError, msg, attrs)
}

func (l *slogLogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &slogLogger{
		handler:  l.handler.WithAttrs(attrs),
		levelVar: l.levelVar,
	}
}

func (l *slogLogger) SetLevel(level Level) {
	l.levelVar.Set(level)
}

func (l *slogLogger) GetLevel() Level {
	return l.levelVar.Level()
}

// nopLogger 空实现
type nopLogger struct{}

// NewNop 返回不输出任何内容的 Logger
//
// 用于测试或作为未注入日志时的默认值。
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(context.Context, string, ...slog.Attr) {}
func (nopLogger) Info(context.Context, string, ...slog.Attr)  {}
func (nopLogger) Warn(context.Context, string, ...slog.Attr)  {}
func (nopLogger) Error(context.Context, string, ...slog.Attr) {}
func (n nopLogger) With(...slog.Attr) Logger                  { return n }

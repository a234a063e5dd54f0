// Package xslotconf 提供游戏与韧性参数的类型化配置。
//
// 支持 YAML 与 JSON 两种格式，按文件扩展名自动检测。加载后立即校验，
// 非法配置不会被返回。Watch 基于 fsnotify 监视文件变更，带防抖，
// 重载后先校验再通知：校验失败时保留旧配置并把错误交给回调。
//
// 使用示例：
//
//	cfg, err := xslotconf.Load("/etc/slotkit/config.yaml")
//	if err != nil {
//	    // 回落到默认配置
//	    cfg = xslotconf.Default()
//	}
package xslotconf

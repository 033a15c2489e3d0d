package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/d60-Lab/delivery-admin/config"
)

var enabled bool

// Init 初始化 Sentry；DSN 为空时保持关闭
func Init(cfg config.SentryConfig) error {
	if cfg.DSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
	}); err != nil {
		return err
	}
	enabled = true
	return nil
}

// Capture 上报错误并附带 tag
func Capture(err error, tags map[string]string) {
	if !enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Recover 上报 panic 值
func Recover(v interface{}) {
	if !enabled {
		return
	}
	sentry.CurrentHub().Recover(v)
}

func Flush() {
	if enabled {
		sentry.Flush(2 * time.Second)
	}
}

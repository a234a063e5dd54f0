package xslotconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	writeConfig := func(t *testing.T, path, body string) {
		t.Helper()
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}

	t.Run("变更触发重载", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		writeConfig(t, path, "game:\n  win_probability: 0.15\n")

		changes := make(chan *Config, 4)
		w, err := Watch(context.Background(), path, func(cfg *Config, err error) {
			if err == nil {
				changes <- cfg
			}
		}, WithDebounce(20*time.Millisecond))
		require.NoError(t, err)
		defer func() { require.NoError(t, w.Stop()) }()

		writeConfig(t, path, "game:\n  win_probability: 0.3\n")

		select {
		case cfg := <-changes:
			assert.Equal(t, 0.3, cfg.Game.WinProbability)
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for reload")
		}
	})

	t.Run("校验失败时通知错误", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		writeConfig(t, path, "game:\n  win_probability: 0.15\n")

		errs := make(chan error, 4)
		w, err := Watch(context.Background(), path, func(cfg *Config, err error) {
			if err != nil {
				errs <- err
			}
		}, WithDebounce(20*time.Millisecond))
		require.NoError(t, err)
		defer func() { require.NoError(t, w.Stop()) }()

		writeConfig(t, path, "game:\n  win_probability: 2.0\n")

		select {
		case err := <-errs:
			assert.ErrorIs(t, err, ErrInvalidConfig)
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for validation error")
		}
	})

	t.Run("Stop 幂等", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		writeConfig(t, path, "{}\n")

		w, err := Watch(context.Background(), path, func(*Config, error) {})
		require.NoError(t, err)
		require.NoError(t, w.Stop())
		require.NoError(t, w.Stop())
	})

	t.Run("ctx 取消停止监视", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		writeConfig(t, path, "{}\n")

		ctx, cancel := context.WithCancel(context.Background())
		w, err := Watch(ctx, path, func(*Config, error) {})
		require.NoError(t, err)
		cancel()
		// run 循环随 ctx 退出，Stop 仅负责关闭 watcher
		require.NoError(t, w.Stop())
	})

	t.Run("参数校验", func(t *testing.T) {
		_, err := Watch(context.Background(), "", func(*Config, error) {})
		assert.ErrorIs(t, err, ErrEmptyPath)

		_, err = Watch(context.Background(), "config.yaml", nil)
		assert.Error(t, err)

		_, err = Watch(context.Background(), "config.toml", func(*Config, error) {})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

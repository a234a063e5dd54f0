package xslotconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.15, cfg.Game.WinProbability)
	assert.Equal(t, uint64(5), cfg.Game.HouseEdgePercent)
	assert.Equal(t, uint64(1_000_000_000), cfg.Game.MaxWager)
	assert.Equal(t, uint(3), cfg.Resilience.MaxRetries)
	assert.Equal(t, 2, cfg.Resilience.HealthQuorum)
}

func TestLoadBytes(t *testing.T) {
	t.Run("YAML 覆盖部分字段", func(t *testing.T) {
		data := []byte(`
game:
  win_probability: 0.2
resilience:
  max_retries: 5
  breaker_cooldown: 10s
`)
		cfg, err := LoadBytes(data, FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, 0.2, cfg.Game.WinProbability)
		assert.Equal(t, uint(5), cfg.Resilience.MaxRetries)
		assert.Equal(t, 10*time.Second, cfg.Resilience.BreakerCooldown)
		// 未覆盖的字段保持默认值
		assert.Equal(t, uint64(5), cfg.Game.HouseEdgePercent)
		assert.Equal(t, 0.8, cfg.Resilience.BreakerFailureRatio)
	})

	t.Run("JSON 格式", func(t *testing.T) {
		data := []byte(`{"game": {"house_edge_percent": 3}}`)
		cfg, err := LoadBytes(data, FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), cfg.Game.HouseEdgePercent)
	})

	t.Run("空数据得到默认配置", func(t *testing.T) {
		cfg, err := LoadBytes(nil, FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("非法值被校验拦截", func(t *testing.T) {
		data := []byte(`{"game": {"win_probability": 1.5}}`)
		_, err := LoadBytes(data, FormatJSON)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("解析失败", func(t *testing.T) {
		_, err := LoadBytes([]byte("{not json"), FormatJSON)
		assert.ErrorIs(t, err, ErrParseFailed)
	})

	t.Run("不支持的格式", func(t *testing.T) {
		_, err := LoadBytes(nil, Format("toml"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestLoad(t *testing.T) {
	t.Run("从文件加载", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("game:\n  win_probability: 0.25\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 0.25, cfg.Game.WinProbability)
	})

	t.Run("空路径", func(t *testing.T) {
		_, err := Load("")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	t.Run("未知扩展名", func(t *testing.T) {
		_, err := Load("config.toml")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, ErrLoadFailed)
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"赢局概率越界", func(c *Config) { c.Game.WinProbability = 0 }},
		{"庄家优势越界", func(c *Config) { c.Game.HouseEdgePercent = 100 }},
		{"赔付上限为零", func(c *Config) { c.Game.MaxPayoutPerWager = 0 }},
		{"下注上限为零", func(c *Config) { c.Game.MaxWager = 0 }},
		{"超时为零", func(c *Config) { c.Resilience.Timeout = 0 }},
		{"重试次数为零", func(c *Config) { c.Resilience.MaxRetries = 0 }},
		{"退避倍率小于一", func(c *Config) { c.Resilience.BackoffMultiplier = 0.5 }},
		{"退避上限低于基础间隔", func(c *Config) { c.Resilience.BackoffCap = c.Resilience.BackoffBase - 1 }},
		{"失败率越界", func(c *Config) { c.Resilience.BreakerFailureRatio = 1.2 }},
		{"探测法定数越界", func(c *Config) { c.Resilience.HealthQuorum = 4 }},
		{"批量并发为零", func(c *Config) { c.Resilience.BatchConcurrency = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("nil 配置", func(t *testing.T) {
		var cfg *Config
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}

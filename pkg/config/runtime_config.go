package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/decker502/casefile/pkg/persistence"
)

// RuntimeConfig 运行时配置（环境变量，命令行参数可覆盖）
type RuntimeConfig struct {
	AppName string `env:"CASEFILE_APP_NAME" envDefault:"casefile"`

	// 存档
	SaveBackend string `env:"CASEFILE_SAVE_BACKEND" envDefault:"gdata"` // gdata / file / sqlite / memory
	SaveDir     string `env:"CASEFILE_SAVE_DIR"     envDefault:"data/saves"`
	SaveDB      string `env:"CASEFILE_SAVE_DB"      envDefault:"casefile.db"`
	SaveSlot    string `env:"CASEFILE_SAVE_SLOT"    envDefault:"casefile"`

	// 内容
	ContentDir  string `env:"CASEFILE_CONTENT_DIR"` // 磁盘内容目录，覆盖嵌入的 data/
	ScenesDir   string `env:"CASEFILE_SCENES_DIR"   envDefault:"data/scenes"`
	StringsFile string `env:"CASEFILE_STRINGS_FILE" envDefault:"data/strings.txt"`

	// 表现层
	BridgeAddr   string        `env:"CASEFILE_BRIDGE_ADDR"` // 为空时不启动 websocket 桥接
	Headless     bool          `env:"CASEFILE_HEADLESS"`
	TPS          int           `env:"CASEFILE_TPS"           envDefault:"60"`
	WindowWidth  int           `env:"CASEFILE_WINDOW_WIDTH"  envDefault:"1024"`
	WindowHeight int           `env:"CASEFILE_WINDOW_HEIGHT" envDefault:"640"`
	FadeDuration time.Duration `env:"CASEFILE_FADE"          envDefault:"400ms"`

	// TextSpeedMs 打字机速度覆盖，-1 表示使用玩家设置
	TextSpeedMs int  `env:"CASEFILE_TEXT_SPEED_MS" envDefault:"-1"`
	Verbose     bool `env:"CASEFILE_VERBOSE"`
}

// LoadRuntimeConfig 从环境变量加载运行时配置
func LoadRuntimeConfig() (RuntimeConfig, error) {
	var cfg RuntimeConfig
	if err := env.Parse(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

// Validate 检查配置取值
func (c *RuntimeConfig) Validate() error {
	c.SaveBackend = strings.ToLower(strings.TrimSpace(c.SaveBackend))
	switch persistence.Backend(c.SaveBackend) {
	case "", persistence.BackendGdata, persistence.BackendFile, persistence.BackendSQLite, persistence.BackendMemory:
	default:
		return fmt.Errorf("unknown save backend %q", c.SaveBackend)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("tps must be positive, got %d", c.TPS)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.FadeDuration < 0 {
		return fmt.Errorf("fade duration must not be negative")
	}
	return nil
}

// StoreOptions 转换为存档后端参数
func (c RuntimeConfig) StoreOptions() persistence.Options {
	return persistence.Options{
		Backend: persistence.Backend(c.SaveBackend),
		AppName: c.AppName,
		Dir:     c.SaveDir,
		Path:    c.SaveDB,
	}
}

// TickInterval 每帧推进的时间
func (c RuntimeConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TPS)
}

package game

import (
	"fmt"
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/casefile/pkg/dialogue"
)

// GameSettings 玩家设置（全局，不绑定存档槽位）
type GameSettings struct {
	// 对话设置
	TextSpeedMs  int  `yaml:"textSpeedMs"`  // 逐字显示间隔（毫秒），0 表示立即显示
	VoiceEnabled bool `yaml:"voiceEnabled"` // 是否朗读对话

	// 通知设置
	NotificationMs int `yaml:"notificationMs"` // 通知默认显示时长（毫秒）

	// 音频设置
	AmbienceVolume float64 `yaml:"ambienceVolume"` // 环境音音量 0.0 ~ 1.0

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		TextSpeedMs:    int(dialogue.DefaultCharDelay / time.Millisecond),
		VoiceEnabled:   true,
		NotificationMs: int(DefaultNotificationDuration / time.Millisecond),
		AmbienceVolume: 0.7,
		Fullscreen:     false,
	}
}

// CharDelay 逐字显示间隔
func (s *GameSettings) CharDelay() time.Duration {
	if s.TextSpeedMs < 0 {
		return 0
	}
	return time.Duration(s.TextSpeedMs) * time.Millisecond
}

// NotificationDuration 通知默认显示时长
func (s *GameSettings) NotificationDuration() time.Duration {
	return time.Duration(s.NotificationMs) * time.Millisecond
}

// SettingsManager 设置管理器
// 负责设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *GameSettings  // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留，加载失败不影响创建
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// gdataManager 为 nil 或设置不存在时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 以默认值为底，旧版本设置文件缺少的字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.AmbienceVolume = clampVolume(loaded.AmbienceVolume)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// gdataManager 为 nil 时返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetTextSpeed 设置逐字显示间隔（毫秒，负数按 0 处理）
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetTextSpeed(ms int) {
	if ms < 0 {
		ms = 0
	}
	sm.settings.TextSpeedMs = ms
}

// SetVoiceEnabled 设置对话朗读开关
func (sm *SettingsManager) SetVoiceEnabled(enabled bool) {
	sm.settings.VoiceEnabled = enabled
}

// SetNotificationDuration 设置通知默认显示时长（毫秒）
func (sm *SettingsManager) SetNotificationDuration(ms int) {
	if ms <= 0 {
		ms = int(DefaultNotificationDuration / time.Millisecond)
	}
	sm.settings.NotificationMs = ms
}

// SetAmbienceVolume 设置环境音音量
//
// 音量值会被限制在 0.0 ~ 1.0 范围内
func (sm *SettingsManager) SetAmbienceVolume(volume float64) {
	sm.settings.AmbienceVolume = clampVolume(volume)
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}

package game

import (
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
)

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings == nil {
		t.Fatal("DefaultSettings() returned nil")
	}
	if settings.TextSpeedMs != 30 {
		t.Errorf("TextSpeedMs: got %v, want 30", settings.TextSpeedMs)
	}
	if !settings.VoiceEnabled {
		t.Error("VoiceEnabled: got false, want true")
	}
	if settings.NotificationDuration() != DefaultNotificationDuration {
		t.Errorf("NotificationDuration: got %v, want %v", settings.NotificationDuration(), DefaultNotificationDuration)
	}
	if settings.CharDelay() != 30*time.Millisecond {
		t.Errorf("CharDelay: got %v, want 30ms", settings.CharDelay())
	}
	if settings.Fullscreen {
		t.Error("Fullscreen: got true, want false")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}

	settings := sm.GetSettings()
	if settings == nil {
		t.Fatal("GetSettings() returned nil in degraded mode")
	}
	if settings.AmbienceVolume != 0.7 {
		t.Errorf("Degraded mode AmbienceVolume: got %v, want 0.7", settings.AmbienceVolume)
	}

	// 降级模式下保存不报错
	sm.SetTextSpeed(10)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode: %v", err)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_DATA_HOME", tempDir)

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: "test_casefile_settings",
	})
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}

	sm1, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}

	sm1.SetTextSpeed(0)
	sm1.SetVoiceEnabled(false)
	sm1.SetNotificationDuration(5000)
	sm1.SetAmbienceVolume(0.25)
	sm1.SetFullscreen(true)

	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error on reload: %v", err)
	}
	settings := sm2.GetSettings()

	if settings.TextSpeedMs != 0 {
		t.Errorf("Loaded TextSpeedMs: got %v, want 0", settings.TextSpeedMs)
	}
	if settings.VoiceEnabled {
		t.Error("Loaded VoiceEnabled: got true, want false")
	}
	if settings.NotificationMs != 5000 {
		t.Errorf("Loaded NotificationMs: got %v, want 5000", settings.NotificationMs)
	}
	if settings.AmbienceVolume != 0.25 {
		t.Errorf("Loaded AmbienceVolume: got %v, want 0.25", settings.AmbienceVolume)
	}
	if !settings.Fullscreen {
		t.Error("Loaded Fullscreen: got false, want true")
	}
}

// TestSetAmbienceVolumeClamp 测试 SetAmbienceVolume 范围校验
func TestSetAmbienceVolumeClamp(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	tests := []struct {
		input    float64
		expected float64
	}{
		{0.5, 0.5},
		{0.0, 0.0},
		{1.0, 1.0},
		{-0.5, 0.0},
		{1.5, 1.0},
	}

	for _, tt := range tests {
		sm.SetAmbienceVolume(tt.input)
		if got := sm.GetSettings().AmbienceVolume; got != tt.expected {
			t.Errorf("SetAmbienceVolume(%v): got %v, want %v", tt.input, got, tt.expected)
		}
	}
}

// TestSetTextSpeedAndNotificationDefaults 测试非法值的处理
func TestSetTextSpeedAndNotificationDefaults(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	sm.SetTextSpeed(-5)
	if sm.GetSettings().TextSpeedMs != 0 {
		t.Errorf("SetTextSpeed(-5): got %v, want 0", sm.GetSettings().TextSpeedMs)
	}

	sm.SetNotificationDuration(0)
	if sm.GetSettings().NotificationDuration() != DefaultNotificationDuration {
		t.Errorf("SetNotificationDuration(0): got %v, want default", sm.GetSettings().NotificationDuration())
	}
}

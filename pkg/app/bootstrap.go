package app

import (
	"fmt"
	"io/fs"
	"log"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/casefile/internal/bridge"
	"github.com/decker502/casefile/pkg/config"
	"github.com/decker502/casefile/pkg/embedded"
	"github.com/decker502/casefile/pkg/game"
	"github.com/decker502/casefile/pkg/modules"
	"github.com/decker502/casefile/pkg/persistence"
)

// Runtime 组装完成的运行时
type Runtime struct {
	Config   config.RuntimeConfig
	Engine   *game.Engine
	Content  *config.Content
	Modules  *modules.Set
	Store    persistence.Store
	Settings *game.SettingsManager

	// Hub 仅在配置了桥接地址或无头模式时存在
	Hub *bridge.Hub
	// Screen 和 Ambience 仅在窗口模式下存在
	Screen   *Screen
	Ambience *AmbiencePlayer
}

// Bootstrap 按运行时配置组装引擎及其协作者
//
// 流程：嵌入资源 → 文本表 → 存档后端 → 玩家设置 → 表现层 → 引擎 → 内容与功能模块。
// 无头模式下 websocket 桥接承担全部表现层；窗口模式下 Screen 负责绘制，
// 桥接（如果启用）只转发导航和语音，并接收远程输入。
//
// 参数：
//   - rc: 已验证的运行时配置
//   - data: 嵌入的 data/ 文件系统
func Bootstrap(rc config.RuntimeConfig, data fs.FS) (*Runtime, error) {
	embedded.Init(data)
	if rc.ContentDir != "" {
		if err := embedded.Overlay(rc.ContentDir); err != nil {
			return nil, fmt.Errorf("content overlay: %w", err)
		}
		log.Printf("[App] 内容覆盖目录: %s", rc.ContentDir)
	}

	strs, err := game.LoadStringTable(rc.StringsFile)
	if err != nil {
		log.Printf("[App] Warning: %v (using built-in strings)", err)
		strs = game.DefaultStringTable()
	}

	store, err := persistence.Open(rc.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open save store: %w", err)
	}

	sm, _ := game.NewSettingsManager(settingsBackend(rc, store))
	settings := sm.GetSettings()
	if rc.TextSpeedMs >= 0 {
		override := *settings
		override.TextSpeedMs = rc.TextSpeedMs
		settings = &override
	}

	rt := &Runtime{Config: rc, Store: store, Settings: sm}
	if rc.Headless || rc.BridgeAddr != "" {
		rt.Hub = bridge.NewHub()
	}

	opts := game.Options{
		Store:    store,
		SaveSlot: rc.SaveSlot,
		Settings: settings,
		Strings:  strs,
	}
	var display modules.Display
	if rc.Headless {
		h := rt.Hub
		opts.Renderer, opts.Movement, opts.Navigator = h, h, h
		opts.Voice, opts.Ambience = h.Voice(), h.Ambience()
		display = h
	} else {
		rt.Screen = NewScreen()
		rt.Ambience = NewAmbiencePlayer(audio.NewContext(SampleRate), settings)
		opts.Renderer, opts.Movement = rt.Screen, rt.Screen
		opts.Ambience = rt.Ambience
		if rt.Hub != nil {
			opts.Navigator, opts.Voice = rt.Hub, rt.Hub.Voice()
		}
		display = rt.Screen
	}

	rt.Engine = game.NewEngine(opts)
	rt.Engine.Scenes().SetFadeDuration(rc.FadeDuration)

	content, err := config.LoadContentDir(rc.ScenesDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load content: %w", err)
	}
	if err := content.Apply(rt.Engine); err != nil {
		store.Close()
		return nil, fmt.Errorf("apply content: %w", err)
	}
	rt.Content = content
	rt.Modules = modules.Install(rt.Engine, display)
	content.ApplyModules(rt.Modules)

	log.Printf("[App] 已加载 %d 个场景，起始场景 %s", len(content.Scenes), content.StartScene)
	return rt, nil
}

// settingsBackend 设置始终存放在 gdata 中；存档后端不是 gdata 时单独打开
// 打开失败时返回 nil，设置只保存在内存中
func settingsBackend(rc config.RuntimeConfig, store persistence.Store) *gdata.Manager {
	if gs, ok := store.(*persistence.GdataStore); ok {
		return gs.Manager()
	}
	if persistence.Backend(rc.SaveBackend) == persistence.BackendMemory {
		return nil
	}
	gs, err := persistence.OpenGdata(rc.AppName)
	if err != nil {
		log.Printf("[App] Warning: %v (settings kept in memory)", err)
		return nil
	}
	return gs.Manager()
}

// Start 开始新游戏
func (rt *Runtime) Start() error {
	return rt.Engine.NewGame(rt.Content.StartScene)
}

// Close 停止环境音、保存设置并关闭存档后端
func (rt *Runtime) Close() error {
	if rt.Ambience != nil {
		rt.Ambience.Stop()
	}
	if rt.Settings != nil {
		if err := rt.Settings.Save(); err != nil {
			log.Printf("[App] Warning: 保存设置失败: %v", err)
		}
	}
	return rt.Store.Close()
}

// NewWindowApp 用运行时创建窗口宿主
func (rt *Runtime) NewWindowApp() (*App, error) {
	return NewApp(Config{
		Engine: rt.Engine,
		Screen: rt.Screen,
		Bridge: rt.Hub,
		Width:  rt.Config.WindowWidth,
		Height: rt.Config.WindowHeight,
		Tick:   rt.Config.TickInterval(),
	})
}

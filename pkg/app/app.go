// Package app 提供本地窗口宿主
//
// App 实现 ebiten.Game：每个 tick 先处理桥接客户端的入站事件，再处理键鼠/触摸输入，
// 最后推进引擎的调度器和 Screen 的动画。Screen 同时充当引擎的 Renderer、Movement 和
// 功能面板 Display。无窗口环境使用 RunHeadless。
package app

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/casefile/internal/bridge"
	"github.com/decker502/casefile/pkg/game"
	"github.com/decker502/casefile/pkg/utils"
)

// DefaultTuneStep 连续参数谜题每次按键的调节量
const DefaultTuneStep = 0.1

// Config 定义宿主启动配置
type Config struct {
	Engine *game.Engine
	Screen *Screen
	// Bridge 可选：接收 websocket 客户端的输入
	Bridge *bridge.Hub

	Width, Height int
	Tick          time.Duration
	TuneStep      float64
}

// App 本地窗口宿主，实现 ebiten.Game 接口
type App struct {
	engine  *game.Engine
	screen  *Screen
	painter *painter
	hub     *bridge.Hub

	width, height int
	tick          time.Duration
	tuneStep      float64

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建本地窗口宿主
//
// 调用前引擎必须已经以 cfg.Screen 作为 Renderer 和 Movement 创建。
func NewApp(cfg Config) (*App, error) {
	if cfg.Engine == nil || cfg.Screen == nil {
		return nil, fmt.Errorf("app: engine and screen are required")
	}
	p, err := newPainter(cfg.Engine.Strings())
	if err != nil {
		return nil, err
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second / 60
	}
	if cfg.TuneStep <= 0 {
		cfg.TuneStep = DefaultTuneStep
	}
	return &App{
		engine:   cfg.Engine,
		screen:   cfg.Screen,
		painter:  p,
		hub:      cfg.Bridge,
		width:    cfg.Width,
		height:   cfg.Height,
		tick:     cfg.Tick,
		tuneStep: cfg.TuneStep,
	}, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次
func (a *App) Update() error {
	// 退出全屏后需要等待几帧才能正确设置窗口大小
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.width, a.height)
			a.pendingWindowSizeReset = false
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	if a.hub != nil {
		a.hub.Poll(a.engine)
	}
	a.handleInput()
	a.step(a.tick)
	return nil
}

// step 推进引擎时间和界面动画
func (a *App) step(dt time.Duration) {
	a.engine.Update(dt)
	a.screen.Tick(dt)
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		return
	}
	ebiten.SetFullscreen(true)
}

// handleInput 按当前模式分派键鼠/触摸输入
func (a *App) handleInput() {
	pointer := utils.GetInputState()

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		_ = a.engine.Save()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		_ = a.engine.Load()
	}

	switch a.engine.Mode() {
	case game.ModePuzzle:
		a.typeRunes(ebiten.AppendInputChars(nil))
		if repeatPressed(ebiten.KeyBackspace) {
			a.backspace()
		}
		if repeatPressed(ebiten.KeyLeft) {
			a.tune(-1)
		}
		if repeatPressed(ebiten.KeyRight) {
			a.tune(1)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
			a.engine.Puzzles().ToggleHint()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			a.submit()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			a.escape()
		}

	case game.ModeDialogue:
		if utils.IsAdvanceKeyJustPressed() || pointer.JustPressed {
			a.engine.AdvanceDialogue()
		}

	default:
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			a.escape()
			return
		}
		if pointer.JustPressed {
			a.click(pointer.X, pointer.Y)
		}
	}
}

// repeatPressed 按住时按固定间隔重复触发
func repeatPressed(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d > 20 && d%4 == 0)
}

// click 处理场景区域内的点击，功能面板打开时点击关闭面板
func (a *App) click(x, y int) {
	if a.screen.PanelOpen() {
		a.escape()
		return
	}
	viewW := a.width - sidebarW
	if x >= viewW {
		return
	}
	a.engine.Hotspots().HandlePointer(x, y, viewW, a.height)
}

// typeRunes 向文本谜题的输入框追加字符
func (a *App) typeRunes(rs []rune) {
	if len(rs) == 0 || a.screen.puzzleView == nil || a.screen.puzzleView.Continuous {
		return
	}
	a.screen.puzzleInput += string(rs)
}

func (a *App) backspace() {
	in := []rune(a.screen.puzzleInput)
	if len(in) > 0 {
		a.screen.puzzleInput = string(in[:len(in)-1])
	}
}

func (a *App) tune(dir float64) {
	if a.screen.puzzleView == nil || !a.screen.puzzleView.Continuous {
		return
	}
	if err := a.engine.Puzzles().Adjust(dir * a.tuneStep); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// submit 提交输入框内容，失败后清空输入框
func (a *App) submit() {
	input := a.screen.puzzleInput
	a.screen.puzzleInput = ""
	if _, err := a.engine.SubmitPuzzle(input); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// escape 关闭最上层：谜题 → 功能面板
func (a *App) escape() {
	if a.engine.Mode() == game.ModePuzzle {
		a.engine.Puzzles().Cancel()
		return
	}
	if a.screen.panel != nil {
		a.screen.HidePanel(a.screen.panel.Module)
	}
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	a.painter.draw(screen, a.screen)
}

// DrawFinalScreen 控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.width, a.height
}

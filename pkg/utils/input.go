// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerSource 指针输入来源
type PointerSource int

const (
	// PointerMouse 鼠标左键
	PointerMouse PointerSource = iota
	// PointerTouch 触摸
	PointerTouch
)

// InputState 存储当前帧的输入状态
// 用于统一处理鼠标和触摸输入
type InputState struct {
	// 是否有点击/触摸事件刚刚发生
	JustPressed bool
	// 点击/触摸位置（屏幕像素）
	X, Y int
	// 是否有活动的触摸
	IsTouching bool
	// 输入来源
	Source PointerSource
}

// GetInputState 获取当前帧的输入状态
// 同时支持鼠标点击和触摸输入，优先检测触摸
func GetInputState() InputState {
	state := InputState{}

	// 首先检查触摸输入（移动设备）
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		state.JustPressed = true
		state.X, state.Y = ebiten.TouchPosition(touchIDs[0])
		state.IsTouching = true
		state.Source = PointerTouch
		return state
	}

	// 检查是否有活动的触摸（用于悬停检测）
	allTouchIDs := ebiten.AppendTouchIDs(nil)
	if len(allTouchIDs) > 0 {
		state.X, state.Y = ebiten.TouchPosition(allTouchIDs[0])
		state.IsTouching = true
		state.Source = PointerTouch
		return state
	}

	// 其次检查鼠标输入（桌面设备）
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		state.JustPressed = true
		state.X, state.Y = ebiten.CursorPosition()
		return state
	}

	// 获取鼠标位置用于悬停检测
	state.X, state.Y = ebiten.CursorPosition()
	return state
}

// IsAdvanceKeyJustPressed 检查推进对话的按键（空格/回车）是否刚刚按下
func IsAdvanceKeyJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter)
}

// NormalizePointer 将屏幕像素坐标换算为视口百分比坐标（0~100）
//
// 鼠标和触摸输入都先经过此函数，热点命中测试只处理百分比坐标。
// 视口尺寸非法或点落在视口外时返回 ok=false。
func NormalizePointer(x, y, viewportW, viewportH int) (px, py float64, ok bool) {
	if viewportW <= 0 || viewportH <= 0 {
		return 0, 0, false
	}
	if x < 0 || y < 0 || x > viewportW || y > viewportH {
		return 0, 0, false
	}
	px = float64(x) / float64(viewportW) * 100
	py = float64(y) / float64(viewportH) * 100
	return px, py, true
}

// DenormalizePointer 将百分比坐标换算回屏幕像素坐标
func DenormalizePointer(px, py float64, viewportW, viewportH int) (x, y float64) {
	return px / 100 * float64(viewportW), py / 100 * float64(viewportH)
}

//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此文件仅在使用 -tags mobile 构建时编译。构建前先把仓库根目录的 data/ 复制到本目录：
//
//	cp -r data mobile/data
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.casefile -o build/android/casefile.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/Casefile.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/casefile/pkg/app"
	"github.com/decker502/casefile/pkg/config"
)

func init() {
	// 移动端没有命令行参数，只读取环境变量中的默认值
	rc, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	rc.Headless = false
	rc.BridgeAddr = ""

	// dataFS 在 embed.go 中声明
	rt, err := app.Bootstrap(rc, dataFS)
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}
	if err := rt.Start(); err != nil {
		log.Fatalf("无法进入起始场景: %v", err)
	}

	gameApp, err := rt.NewWindowApp()
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}
	mobile.SetGame(gameApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}

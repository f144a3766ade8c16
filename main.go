package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/errgroup"

	"github.com/decker502/casefile/pkg/app"
	"github.com/decker502/casefile/pkg/config"
)

func main() {
	rc, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 命令行参数覆盖环境变量
	flag.StringVar(&rc.ScenesDir, "scenes", rc.ScenesDir, "场景内容目录（data/ 开头时读取嵌入资源）")
	flag.StringVar(&rc.ContentDir, "content", rc.ContentDir, "覆盖嵌入 data/ 的磁盘目录")
	flag.StringVar(&rc.SaveBackend, "save", rc.SaveBackend, "存档后端：gdata / file / sqlite / memory")
	flag.StringVar(&rc.BridgeAddr, "bridge", rc.BridgeAddr, "websocket 桥接监听地址，例如 :8080")
	flag.BoolVar(&rc.Headless, "headless", rc.Headless, "无窗口运行（需要 --bridge）")
	flag.BoolVar(&rc.Verbose, "verbose", rc.Verbose, "显示详细日志")
	flag.Parse()

	if err := rc.Validate(); err != nil {
		log.Fatalf("配置无效: %v", err)
	}
	if rc.Headless && rc.BridgeAddr == "" {
		log.Fatalf("--headless 需要同时指定 --bridge")
	}
	if !rc.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	rt, err := app.Bootstrap(rc, dataFS)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("游戏初始化失败: %v", err)
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rt.Start(); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("无法进入起始场景: %v", err)
	}

	if rc.Headless {
		runHeadless(ctx, rt)
		return
	}
	runWindow(ctx, rt)
}

// runHeadless 同时运行桥接服务器和无头循环，任一退出时全部停止
func runHeadless(ctx context.Context, rt *app.Runtime) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rt.Hub.Serve(ctx, rt.Config.BridgeAddr) })
	g.Go(func() error { return app.RunHeadless(ctx, rt.Engine, rt.Hub, rt.Config.TickInterval()) })
	if err := g.Wait(); err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("运行失败: %v", err)
	}
}

func runWindow(ctx context.Context, rt *app.Runtime) {
	gameApp, err := rt.NewWindowApp()
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("游戏初始化失败: %v", err)
	}

	if rt.Hub != nil {
		go func() {
			if err := rt.Hub.Serve(ctx, rt.Config.BridgeAddr); err != nil {
				log.Printf("[Bridge] 服务器退出: %v", err)
			}
		}()
	}

	ebiten.SetWindowSize(rt.Config.WindowWidth, rt.Config.WindowHeight)
	ebiten.SetWindowTitle(rt.Config.AppName)
	ebiten.SetTPS(rt.Config.TPS)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if rt.Settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(gameApp); err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("游戏退出: %v", err)
	}
}

package app

import (
	"context"
	"log"
	"time"

	"github.com/decker502/casefile/internal/bridge"
	"github.com/decker502/casefile/pkg/game"
)

// RunHeadless 无窗口运行：按固定间隔处理桥接事件并推进引擎，直到 ctx 取消
//
// 参数：
//   - e: 以 hub 作为表现层创建的引擎
//   - hub: 桥接中心（可为 nil，此时只推进时间）
//   - tick: 每次推进的时长
func RunHeadless(ctx context.Context, e *game.Engine, hub *bridge.Hub, tick time.Duration) error {
	if tick <= 0 {
		tick = time.Second / 60
	}
	log.Printf("[App] Headless loop started (tick %v)", tick)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[App] Headless loop stopped")
			return nil
		case <-ticker.C:
			if hub != nil {
				hub.Poll(e)
			}
			e.Update(tick)
		}
	}
}

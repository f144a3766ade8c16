// check_content 检查磁盘上的内容目录：严格解析、交叉引用验证和场景可达性
//
// 用法：
//
//	go run ./cmd/check_content [-dir data/scenes] [-strings data/strings.txt]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decker502/casefile/pkg/config"
	"github.com/decker502/casefile/pkg/embedded"
	"github.com/decker502/casefile/pkg/game"
)

func main() {
	dir := flag.String("dir", "data/scenes", "内容目录")
	stringsFile := flag.String("strings", "data/strings.txt", "文本表文件")
	flag.Parse()

	// 让 data/ 开头的路径直接读取工作目录下的文件
	embedded.Init(os.DirFS("."))

	content, err := config.LoadContentDir(*dir)
	if err != nil {
		fmt.Printf("❌ 内容无效: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 内容解析与验证通过\n")
	fmt.Printf("   场景: %d, 物品: %d, 任务: %d, 谜题: %d, 证物: %d, 聊天: %d\n",
		len(content.Scenes), len(content.Items), len(content.Quests),
		len(content.Puzzles), len(content.Evidence), len(content.Chats))

	failed := false
	if unreachable := content.Unreachable(); len(unreachable) > 0 {
		fmt.Printf("❌ 从 %s 无法到达的场景: %v\n", content.StartScene, unreachable)
		failed = true
	} else {
		fmt.Printf("✅ 所有场景都可以从 %s 到达\n", content.StartScene)
	}

	st, err := game.LoadStringTable(*stringsFile)
	if err != nil {
		fmt.Printf("❌ 文本表: %v\n", err)
		failed = true
	} else {
		missing := 0
		for _, key := range game.RequiredStrings() {
			if !st.Has(key) {
				fmt.Printf("⚠️  文本表缺少 %s（使用内置文本）\n", key)
				missing++
			}
		}
		if missing == 0 {
			fmt.Printf("✅ 文本表包含全部 %d 个键\n", st.Len())
		}
	}

	if failed {
		os.Exit(1)
	}
}

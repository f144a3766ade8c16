package modules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/decker502/casefile/pkg/game"
	"github.com/decker502/casefile/pkg/puzzle"
)

// Password 密码输入模块，打开一个 password 类型的谜题
//
// Show 的 cfg：
//   - id: 谜题 ID（必填），先在目录中查找
//   - answers: 逗号分隔的可接受答案（目录中没有时必填）
//   - prompt/hint/title: 可选
//   - attempts: 最大尝试次数，可选
type Password struct {
	engine  *game.Engine
	configs map[string]puzzle.Config
}

// NewPassword 创建密码输入模块
func NewPassword(e *game.Engine) *Password {
	return &Password{engine: e, configs: make(map[string]puzzle.Config)}
}

func (p *Password) Name() string { return PasswordModule }

// Register 把密码谜题加入目录（非 password 类型被忽略）
func (p *Password) Register(cfgs ...puzzle.Config) {
	for _, cfg := range cfgs {
		if cfg.ID == "" || cfg.Type != puzzle.TypePassword {
			continue
		}
		p.configs[cfg.ID] = cfg
	}
}

func (p *Password) Show(cfg map[string]string) error {
	id := cfg["id"]
	if id == "" {
		return fmt.Errorf("password: missing puzzle id")
	}

	pc, ok := p.configs[id]
	if !ok {
		pc = puzzle.Config{ID: id, Type: puzzle.TypePassword}
		for _, a := range strings.Split(cfg["answers"], ",") {
			if a = strings.TrimSpace(a); a != "" {
				pc.Answers = append(pc.Answers, a)
			}
		}
		if len(pc.Answers) == 0 {
			return fmt.Errorf("password: puzzle %q has no answers", id)
		}
	}
	if v := cfg["title"]; v != "" {
		pc.Title = v
	}
	if v := cfg["prompt"]; v != "" {
		pc.Prompt = v
	}
	if v := cfg["hint"]; v != "" {
		pc.Hint = v
	}
	if v := cfg["attempts"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("password: invalid attempts %q", v)
		}
		pc.MaxAttempts = n
	}
	return p.engine.StartPuzzle(&pc)
}

// IsSolved 密码谜题是否已解开
func (p *Password) IsSolved(id string) bool {
	return p.engine.FlagTrue(puzzle.SolvedFlag(id))
}

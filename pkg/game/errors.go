package game

import (
	"errors"

	"github.com/decker502/casefile/pkg/puzzle"
)

// 引擎错误分类
//
// 这些错误只在调用点被记录日志，需要让玩家知道时转成通知；
// 不会有任何一个让引擎停止响应。
var (
	// ErrUnregisteredScene 场景 ID 未注册，LoadScene 中止
	ErrUnregisteredScene = errors.New("unregistered scene")
	// ErrInvalidScene 场景定义不合法（空 ID、热点 ID 重复等）
	ErrInvalidScene = errors.New("invalid scene")
	// ErrMissingMount 表现层缺少挂载点，相关功能降级
	ErrMissingMount = errors.New("missing mount")
	// ErrMalformedSave 存档无法解析，按"没有存档"处理
	ErrMalformedSave = errors.New("malformed save")
	// ErrNoSave 槽位中没有存档
	ErrNoSave = errors.New("no save")
	// ErrMissingCollaborator 可选协作者或功能模块不存在
	ErrMissingCollaborator = errors.New("missing collaborator")
	// ErrUnknownPuzzleType 谜题类型未注册
	ErrUnknownPuzzleType = puzzle.ErrUnknownPuzzleType
)

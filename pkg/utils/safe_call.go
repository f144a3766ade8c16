package utils

import "log"

// SafeCall 在边界处调用场景脚本或外部协作者的回调
//
// 回调内的 panic 会被恢复并记录，引擎保持可交互。
// fn 为 nil 时直接返回 true。
//
// 返回：
//   - bool: 回调正常返回为 true，发生 panic 为 false
func SafeCall(component, what string, fn func()) (ok bool) {
	if fn == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%s] Warning: %s 发生 panic: %v", component, what, r)
			ok = false
		}
	}()
	fn()
	return true
}

package scheduler

// Token 协作式取消令牌
//
// 逐字显示等循环在每一步之前检查 Cancelled()，一旦被取消立即退出。
// nil Token 永远不会被取消。
type Token struct {
	cancelled bool
}

// NewToken 创建一个未取消的令牌
func NewToken() *Token {
	return &Token{}
}

// Cancel 取消令牌（可重复调用）
func (t *Token) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

// Cancelled 返回令牌是否已取消
func (t *Token) Cancelled() bool {
	return t != nil && t.cancelled
}

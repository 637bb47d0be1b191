package domain

// Actor 触发写操作的用户；系统发起的保存（导入、迁移）没有 Actor
type Actor struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

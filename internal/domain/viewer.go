package domain

// Viewer 表示通过 bearer 令牌识别出的 Telegram 用户
type Viewer struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	TelegramID string `json:"telegram_id,omitempty"`
}

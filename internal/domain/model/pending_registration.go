package model

import "time"

// 会員登録の途中状態。tokenで引けるDBレコードとして持つ
// （プロセス内のグローバル変数には置かない）。
// expires_atを過ぎたものは検証できない。
type PendingRegistration struct {
	Token        string    `gorm:"type:uuid;primaryKey" json:"token"`
	Email        string    `gorm:"not null;index" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Code         string    `gorm:"type:varchar(10);not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

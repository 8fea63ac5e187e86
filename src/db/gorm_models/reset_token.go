package gorm_models

import (
	"time"
)

// PasswordResetToken одноразовый токен сброса пароля
type PasswordResetToken struct {
	IDToken   int64     `gorm:"column:id_token;primaryKey;autoIncrement"`
	IDUser    int64     `gorm:"column:id_user;not null;index"`
	User      *User     `gorm:"foreignKey:IDUser;references:IDUser"`
	Token     string    `gorm:"column:token;type:text;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PasswordResetToken) TableName() string { return "crm_password_reset_token" }

// IsExpired сообщает, истёк ли токен к моменту now
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

package gorm_models

import (
	"time"
)

// User модель пользователя CRM
type User struct {
	IDUser       int64     `gorm:"column:id_user;primaryKey;autoIncrement"`
	UserName     string    `gorm:"column:user_name;type:text;not null;uniqueIndex"`
	Email        string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;type:text;not null"`
	IsSuperuser  bool      `gorm:"column:is_superuser;not null;default:false"`
	Timezone     string    `gorm:"column:timezone;type:text;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "crm_user" }

// Role возвращает роль пользователя для ответа при логине
func (u *User) Role() string {
	if u.IsSuperuser {
		return "Admin"
	}
	return "User"
}

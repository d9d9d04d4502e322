package model

import "time"

// User : локальная запись внешней учётной записи
type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type UserProfile struct {
	UserID    string    `db:"user_id" json:"user_id"`
	AvatarRef string    `db:"avatar_ref" json:"avatar_ref"`
	Bio       string    `db:"bio" json:"bio"`
	Phone     string    `db:"phone" json:"phone"`
	Location  string    `db:"location" json:"location"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileUpdate : nil-поля не меняются
type ProfileUpdate struct {
	Bio      *string
	Phone    *string
	Location *string
}

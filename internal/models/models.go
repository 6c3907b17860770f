package models

import (
	"time"
)

// User is a catalog account. Password holds the bcrypt hash, never the
// plaintext, and is excluded from every JSON response.
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"              json:"id"`
	Username  string    `gorm:"not null"                              json:"username"`
	Email     string    `gorm:"uniqueIndex;not null"                  json:"email"`
	Password  string    `gorm:"not null"                              json:"-"`
	IsAdmin   bool      `gorm:"column:isadmin;not null;default:false" json:"isadmin"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoLink   string    `gorm:"not null"                 json:"video_link"`
	Name        string    `gorm:"not null"                 json:"name"`
	ActualPrice float64   `gorm:"not null"                 json:"actual_price"`
	DisPrice    float64   `gorm:"not null"                 json:"dis_price"`
	CreatedAt   time.Time `json:"created_at"`
}

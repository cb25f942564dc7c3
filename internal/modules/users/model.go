package users

import "time"

type User struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100);not null" json:"last_name"`
	BirthDate    string    `gorm:"type:varchar(10);not null" json:"birth_date"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string    `gorm:"column:password;type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "users" }

// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string     `json:"name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	UserType     UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`

	// Buyer segment; only meaningful for student accounts.
	Level       EducationLevel `json:"level,omitempty" gorm:"type:varchar(20)"`
	StudentType StudentType    `json:"student_type,omitempty" gorm:"type:varchar(10)"`
	Gender      Gender         `json:"gender,omitempty" gorm:"type:varchar(10)"`

	LastLoginAt *time.Time `json:"last_login_at"`

	Orders []Order `json:"orders,omitempty" gorm:"foreignKey:BuyerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsStaff() bool {
	return u.UserType == UserTypeStaff || u.UserType == UserTypeAdmin
}

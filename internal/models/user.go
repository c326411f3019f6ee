// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string `json:"name" gorm:"size:255;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	PhoneNumber  string `json:"phone_number" gorm:"size:30"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	IsAdmin      bool   `json:"is_admin" gorm:"default:false"`

	// Relationships
	Addresses []UserAddress `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
	Orders    []Order       `json:"orders,omitempty" gorm:"foreignKey:UserID"`
}

type UserAddress struct {
	BaseModel
	UserID        uint   `json:"user_id" gorm:"not null;index"`
	RecipientName string `json:"recipient_name" gorm:"size:255;not null"`
	AddressLine1  string `json:"address_line1" gorm:"size:255;not null"`
	AddressLine2  string `json:"address_line2" gorm:"size:255"`
	City          string `json:"city" gorm:"size:100;not null"`
	Province      string `json:"province" gorm:"size:100"`
	PostalCode    string `json:"postal_code" gorm:"size:20;not null"`
	Phone         string `json:"phone" gorm:"size:30"`
	IsDefault     bool   `json:"is_default" gorm:"default:false"`

	User User `json:"-" gorm:"foreignKey:UserID"`
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

package models

import "time"

type Customer struct {
	ID             uint   `gorm:"primaryKey"`
	FirstName      string `gorm:"size:100;not null"`
	LastName       string `gorm:"size:100;not null"`
	DocumentNumber string `gorm:"size:20;uniqueIndex;not null"`
	Email          string `gorm:"size:254;not null"`
	Phone          string `gorm:"size:20"`
	Address        string `gorm:"size:300"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

package models

import "time"

// Category groups products under a unique name.
// Deleting a category cascades to the products it owns.
type Category struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:100;uniqueIndex;not null"`
	Description string    `gorm:"size:500"`
	Products    []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false"`
}

func (c *Category) TableName() string {
	return "categories"
}

func (c Category) PrimaryKey() uint {
	return c.ID
}

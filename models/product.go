package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the store.
// Price is a fixed-point decimal and CategoryID is a required foreign key;
// the referenced category must exist at write time.
type Product struct {
	ID         uint            `gorm:"primaryKey"`
	Name       string          `gorm:"size:200;not null;index"`
	Price      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CategoryID uint            `gorm:"not null;index"`
	Category   *Category       `gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false"`
	// Version is bumped on every successful update and compared in the
	// UPDATE's WHERE clause to detect concurrent writes at commit time.
	Version int64 `gorm:"not null;default:1"`
}

func (p *Product) TableName() string {
	return "products"
}

func (p Product) PrimaryKey() uint {
	return p.ID
}

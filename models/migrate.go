package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the storefront owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Product{},
		&ProductImage{},
		&GuestUser{},
		&CartSnapshot{},
		&Order{},
		&OrderItem{},
		&MediaAsset{},
	)
}

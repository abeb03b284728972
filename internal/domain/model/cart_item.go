package model

import "time"

// カートの明細。価格は持たない（注文確定時にカタログから計算し直す）。
// quantityは常に1以上。0になる明細は行ごと削除する。
// (cart_id, plant_id)のuniqueはupsert加算の前提。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;uniqueIndex:idx_cart_items_cart_plant" json:"cart_id"`
	PlantID   int64     `gorm:"not null;uniqueIndex:idx_cart_items_cart_plant" json:"plant_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

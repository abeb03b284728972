package model

import "time"

// unit_price_snapshotは注文確定時点の割引適用後価格。
// カタログの価格が後で変わっても再計算しない。
type OrderItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64     `gorm:"not null;index" json:"order_id"`
	PlantID           int64     `gorm:"not null;index" json:"plant_id"`
	PlantNameSnapshot string    `gorm:"type:varchar(255);not null" json:"plant_name_snapshot"`
	UnitPriceSnapshot int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

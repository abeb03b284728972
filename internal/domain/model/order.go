package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// 注文。作成後はstatus以外変更しない。
// payment_idはuniqueIndex（同じ決済から注文を2つ作らない）。
type Order struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64       `gorm:"not null;index" json:"user_id"`
	Status     OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice int64       `gorm:"not null" json:"total_price"`

	//ゲートウェイ側の注文ID・決済ID
	GatewayOrderID string `gorm:"type:varchar(64);not null" json:"gateway_order_id"`
	PaymentID      string `gorm:"type:varchar(64);not null;uniqueIndex" json:"payment_id"`

	//配送先は作成時点のスナップショット（住所を後から変えても注文は変わらない）
	ShipName       string `gorm:"type:varchar(255);not null" json:"ship_name"`
	ShipPostalCode string `gorm:"type:varchar(20);not null" json:"ship_postal_code"`
	ShipPrefecture string `gorm:"type:varchar(100);not null" json:"ship_prefecture"`
	ShipCity       string `gorm:"type:varchar(255);not null" json:"ship_city"`
	ShipLine1      string `gorm:"type:varchar(255);not null" json:"ship_line1"`
	ShipLine2      string `gorm:"type:varchar(255)" json:"ship_line2"`
	ShipPhone      string `gorm:"type:varchar(30)" json:"ship_phone"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

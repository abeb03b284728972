package model

import (
	"time"

	"gorm.io/gorm"
)

// 育てやすさの目安。カタログの絞り込みに使う。
type CareLevel string

const (
	CareLevelEasy   CareLevel = "EASY"
	CareLevelMedium CareLevel = "MEDIUM"
	CareLevelHard   CareLevel = "HARD"
)

func (c CareLevel) Valid() bool {
	switch c {
	case CareLevelEasy, CareLevelMedium, CareLevelHard:
		return true
	default:
		return false
	}
}

// 販売する植物。価格は最小通貨単位の整数。
type Plant struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string `gorm:"type:varchar(255);not null" json:"name"`
	BotanicalName string `gorm:"type:varchar(255)" json:"botanical_name"`
	Description   string `gorm:"type:text" json:"description"`

	CareLevel CareLevel `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"care_level"`

	Price int64 `gorm:"not null" json:"price"`
	//割引率（0〜100）
	DiscountPercentage int64 `gorm:"not null;default:0" json:"discount_percentage"`

	Stock    int64 `gorm:"not null" json:"stock"`
	IsActive bool  `gorm:"not null;default:false" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 割引適用後の価格（整数の切り捨て）
func (p Plant) EffectivePrice() int64 {
	return p.Price - p.Price*p.DiscountPercentage/100
}

package repository

import (
	"context"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type PlantGormRepository struct {
	db *gorm.DB
}

func NewPlantGormRepository(db *gorm.DB) *PlantGormRepository {
	return &PlantGormRepository{db: db}
}

var plantSortOrders = map[string]string{
	"":           "id desc",
	"new":        "id desc",
	"price_asc":  "price asc",
	"price_desc": "price desc",
}

// 公開中の植物に対する絞り込み。検索語は通称名と学名の両方に当てる。
func publicPlantScope(q repo.PlantListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_active = ?", true)
		if s := strings.TrimSpace(q.Q); s != "" {
			like := "%" + s + "%"
			db = db.Where("name ILIKE ? OR botanical_name ILIKE ?", like, like)
		}
		if q.CareLevel != "" {
			db = db.Where("care_level = ?", q.CareLevel)
		}
		if q.MinPrice != nil {
			db = db.Where("price >= ?", *q.MinPrice)
		}
		if q.MaxPrice != nil {
			db = db.Where("price <= ?", *q.MaxPrice)
		}
		return db
	}
}

func (r *PlantGormRepository) ListPublic(ctx context.Context, q repo.PlantListQuery) ([]model.Plant, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Plant{}).
		Scopes(publicPlantScope(q)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	order, ok := plantSortOrders[q.Sort]
	if !ok {
		order = "id desc"
	}

	items := make([]model.Plant, 0, q.Limit)
	err = r.db.WithContext(ctx).
		Scopes(publicPlantScope(q)).
		Order(order).
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PlantGormRepository) FindByID(ctx context.Context, id int64) (model.Plant, error) {
	var p model.Plant
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Plant{}, mapNotFound(err)
	}
	return p, nil
}

func (r *PlantGormRepository) Create(ctx context.Context, p model.Plant) (model.Plant, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Plant{}, err
	}
	return p, nil
}

// 在庫（stock）はここでは触らない。在庫はInventoryRepositoryの担当。
func (r *PlantGormRepository) Update(ctx context.Context, p model.Plant) error {
	res := r.db.WithContext(ctx).
		Model(&model.Plant{ID: p.ID}).
		Select("name", "botanical_name", "description", "care_level",
			"price", "discount_percentage", "is_active", "updated_at").
		Updates(p)
	return requireRow(res)
}

func (r *PlantGormRepository) SoftDelete(ctx context.Context, id int64) error {
	return requireRow(r.db.WithContext(ctx).Delete(&model.Plant{}, id))
}

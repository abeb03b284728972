package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type addressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

func (r *addressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return model.Address{}, err
	}
	return address, nil
}

// デフォルト住所を先頭に
func (r *addressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	list := make([]model.Address, 0, 4)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default desc, id asc").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *addressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	var a model.Address
	if err := r.db.WithContext(ctx).First(&a, addressID).Error; err != nil {
		return model.Address{}, mapNotFound(err)
	}
	return a, nil
}

// is_defaultはここでは変えない（SetDefault経由のみ）
func (r *addressGormRepository) Update(ctx context.Context, address model.Address) error {
	res := r.db.WithContext(ctx).
		Model(&model.Address{ID: address.ID}).
		Select("name", "postal_code", "prefecture", "city", "line1", "line2", "phone").
		Updates(address)
	return requireRow(res)
}

func (r *addressGormRepository) Delete(ctx context.Context, addressID int64) error {
	return requireRow(r.db.WithContext(ctx).Delete(&model.Address{}, addressID))
}

func (r *addressGormRepository) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// 本人の住所の中でdefaultを1件だけにする
func (r *addressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&model.Address{}).Where("id = ? AND user_id = ?", addressID, userID)

		var n int64
		if err := owned.Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repo.ErrNotFound
		}

		if err := tx.Model(&model.Address{}).
			Where("user_id = ? AND is_default", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true)
		return requireRow(res)
	})
}

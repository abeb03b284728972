package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

// 仮登録はtokenがPK。本登録かtoken失効で行ごと消える。
type pendingRegistrationGormRepository struct {
	db *gorm.DB
}

func NewPendingRegistrationGormRepository(db *gorm.DB) repo.PendingRegistrationRepository {
	return &pendingRegistrationGormRepository{db: db}
}

func (r *pendingRegistrationGormRepository) Create(ctx context.Context, p model.PendingRegistration) error {
	return r.db.WithContext(ctx).Create(&p).Error
}

func (r *pendingRegistrationGormRepository) FindByToken(ctx context.Context, token string) (model.PendingRegistration, error) {
	var p model.PendingRegistration
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&p).Error; err != nil {
		return model.PendingRegistration{}, mapNotFound(err)
	}
	return p, nil
}

func (r *pendingRegistrationGormRepository) DeleteByToken(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&model.PendingRegistration{})
	return requireRow(res)
}

// 期限切れの掃除。消す行が無くてもエラーにしない。
func (r *pendingRegistrationGormRepository) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.PendingRegistration{}).Error
}

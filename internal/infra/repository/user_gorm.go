package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repo.UserRepository {
	return &userGormRepository{db: db}
}

func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userGormRepository) findOne(ctx context.Context, cond string, v interface{}) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where(cond, v).First(&u).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (r *userGormRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	return r.findOne(ctx, "id = ?", userID)
}

func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userGormRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

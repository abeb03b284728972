package repository

import (
	"errors"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

// gormのRecordNotFoundをrepo層のErrNotFoundに寄せる
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	return err
}

// 更新・削除系で、対象行が無ければErrNotFound
func requireRow(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 公開カタログの検索条件。ゼロ値の項目は条件なし。
type PlantListQuery struct {
	Page      int
	Limit     int
	Q         string
	CareLevel string
	MinPrice  *int64
	MaxPrice  *int64
	Sort      string
}

type PlantRepository interface {
	ListPublic(ctx context.Context, q PlantListQuery) ([]model.Plant, int64, error)
	FindByID(ctx context.Context, id int64) (model.Plant, error)

	Create(ctx context.Context, p model.Plant) (model.Plant, error)
	Update(ctx context.Context, p model.Plant) error
	SoftDelete(ctx context.Context, id int64) error
}

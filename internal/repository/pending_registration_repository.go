package repository

import (
	"context"

	"app/internal/domain/model"
)

// 会員登録の途中状態。tokenは1回だけ使える。
type PendingRegistrationRepository interface {
	Create(ctx context.Context, p model.PendingRegistration) error
	FindByToken(ctx context.Context, token string) (model.PendingRegistration, error)
	DeleteByToken(ctx context.Context, token string) error
	//期限切れの掃除
	DeleteExpired(ctx context.Context) error
}

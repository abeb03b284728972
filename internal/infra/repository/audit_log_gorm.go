package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

// 指定された条件だけWHEREに積む
func auditLogConds(f repo.AuditLogFilter) []func(*gorm.DB) *gorm.DB {
	var conds []func(*gorm.DB) *gorm.DB

	add := func(expr string, v interface{}) {
		conds = append(conds, func(db *gorm.DB) *gorm.DB { return db.Where(expr, v) })
	}

	if f.ActorUserID != nil {
		add("actor_user_id = ?", *f.ActorUserID)
	}
	if f.Action != nil {
		add("action = ?", *f.Action)
	}
	if f.ResourceType != nil {
		add("resource_type = ?", *f.ResourceType)
	}
	if f.ResourceID != nil {
		add("resource_id = ?", *f.ResourceID)
	}
	if f.CreatedFrom != nil {
		add("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		add("created_at <= ?", *f.CreatedTo)
	}
	return conds
}

// 新しい順。limitの上限は200、既定は50。
func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Scopes(auditLogConds(f)...).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

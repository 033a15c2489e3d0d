package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/delivery-admin/internal/model"
)

// ActivityRepository 操作记录仓储接口
type ActivityRepository interface {
	// Create 写入一条操作记录
	Create(ctx context.Context, activity *model.Activity) error

	// ListRecent 按时间倒序返回最近的记录
	ListRecent(ctx context.Context, limit int) ([]*model.Activity, error)

	// ListByTarget 查询某个订单或商品的记录
	ListByTarget(ctx context.Context, target string, limit int) ([]*model.Activity, error)

	// Count 统计记录数量
	Count(ctx context.Context) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建操作记录仓储
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// InitSchema 初始化表结构
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Activity{}); err != nil {
		return fmt.Errorf("failed to migrate activities table: %w", err)
	}
	return nil
}

func (r *activityRepository) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]*model.Activity, error) {
	var res []*model.Activity
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *activityRepository) ListByTarget(ctx context.Context, target string, limit int) ([]*model.Activity, error) {
	var res []*model.Activity
	err := r.db.WithContext(ctx).
		Where("target = ?", target).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *activityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Activity{}).Count(&count).Error
	return count, err
}

package repository

import (
	"context"
	"errors"
	"time"

	"kmarket_dev_v1_202608/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== 过滤条件 ====================

// InquiryFilter 客服咨询过滤条件
type InquiryFilter struct {
	MarketConfigID int64
	Answered       *bool
	Page           int
	PageSize       int
}

// ==================== CsInquiryRepository 客服咨询仓库 ====================

// CsInquiryRepository 客服咨询仓库接口
type CsInquiryRepository interface {
	GetByID(ctx context.Context, id int64) (*model.CsInquiry, error)
	GetByInquiryID(ctx context.Context, configID int64, inquiryID string) (*model.CsInquiry, error)
	List(ctx context.Context, filter InquiryFilter) ([]model.CsInquiry, int64, error)

	// 同步相关：按 (market_config_id, inquiry_id) 冲突键 upsert
	// 冲突时只刷新平台上报字段，本地的回复内容与已答标记不动
	UpsertFromMarket(ctx context.Context, inquiry *model.CsInquiry) error

	// MarkReplied 写入回复内容并置已答
	MarkReplied(ctx context.Context, id int64, replyContent string) error
}

// ==================== 实现 ====================

type csInquiryRepository struct {
	db *gorm.DB
}

// NewCsInquiryRepository 创建客服咨询仓库
func NewCsInquiryRepository(db *gorm.DB) CsInquiryRepository {
	return &csInquiryRepository{db: db}
}

func (r *csInquiryRepository) GetByID(ctx context.Context, id int64) (*model.CsInquiry, error) {
	var inquiry model.CsInquiry
	err := r.db.WithContext(ctx).First(&inquiry, id).Error
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// GetByInquiryID 按冲突键查咨询, 不存在时返回 nil 而不是错误
func (r *csInquiryRepository) GetByInquiryID(ctx context.Context, configID int64, inquiryID string) (*model.CsInquiry, error) {
	var inquiry model.CsInquiry
	err := r.db.WithContext(ctx).
		Where("market_config_id = ? AND inquiry_id = ?", configID, inquiryID).
		First(&inquiry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *csInquiryRepository) List(ctx context.Context, filter InquiryFilter) ([]model.CsInquiry, int64, error) {
	var inquiries []model.CsInquiry
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CsInquiry{})

	if filter.MarketConfigID > 0 {
		db = db.Where("market_config_id = ?", filter.MarketConfigID)
	}
	if filter.Answered != nil {
		db = db.Where("answered = ?", *filter.Answered)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.
		Order("inquired_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&inquiries).Error

	return inquiries, total, err
}

func (r *csInquiryRepository) UpsertFromMarket(ctx context.Context, inquiry *model.CsInquiry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "market_config_id"},
			{Name: "inquiry_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"writer_id", "title", "content", "inquired_at", "updated_at",
		}),
	}).Create(inquiry).Error
}

func (r *csInquiryRepository) MarkReplied(ctx context.Context, id int64, replyContent string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.CsInquiry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reply_content": replyContent,
			"answered":      true,
			"replied_at":    now,
		}).Error
}

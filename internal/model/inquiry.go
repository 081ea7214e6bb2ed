package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== CsInquiry 客服咨询 ====================

// CsInquiry 平台客服咨询
// 唯一键 (market_config_id, inquiry_id)，同步引擎只建不删
// 回复动作写入 ReplyContent 并置 Answered=true
type CsInquiry struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	MarketConfigID int64  `gorm:"uniqueIndex:idx_cfg_inquiry;not null"`
	InquiryID      string `gorm:"uniqueIndex:idx_cfg_inquiry;size:64;not null"`

	WriterID string `gorm:"size:64"`
	Title    string `gorm:"size:255"`
	Content  string `gorm:"type:text"`

	// 回复
	ReplyContent string `gorm:"type:text"`
	Answered     bool   `gorm:"default:false;index"`
	RepliedAt    *time.Time

	InquiredAt *time.Time

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*CsInquiry) TableName() string {
	return "cs_inquiries"
}

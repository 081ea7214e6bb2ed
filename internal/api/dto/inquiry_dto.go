package dto

import "time"

// ==================== 客服咨询 ====================

// ListInquiriesRequest 咨询列表请求
type ListInquiriesRequest struct {
	MarketConfigID int64  `form:"market_config_id"`
	Answered       string `form:"answered"` // true / false / 空为全部
	Page           int    `form:"page,default=1"`
	PageSize       int    `form:"page_size,default=20"`
}

// ListInquiriesResponse 咨询列表响应
type ListInquiriesResponse struct {
	Total int64       `json:"total"`
	List  []InquiryVO `json:"list"`
}

// InquiryVO 咨询视图对象
type InquiryVO struct {
	ID             int64      `json:"id"`
	MarketConfigID int64      `json:"market_config_id"`
	InquiryID      string     `json:"inquiry_id"`
	WriterID       string     `json:"writer_id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	ReplyContent   string     `json:"reply_content"`
	Answered       bool       `json:"answered"`
	RepliedAt      *time.Time `json:"replied_at,omitempty"`
	InquiredAt     *time.Time `json:"inquired_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ReplyInquiryRequest 回复咨询请求
type ReplyInquiryRequest struct {
	Content string `json:"content" binding:"required"`
}

package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kmarket_dev_v1_202608/internal/api/dto"
	"kmarket_dev_v1_202608/internal/repository"
	"kmarket_dev_v1_202608/internal/service"
)

// InquiryController 客服咨询控制器
type InquiryController struct {
	inquiryRepo repository.CsInquiryRepository
	configRepo  repository.MarketConfigRepository
	pushSvc     *service.PushService
}

// NewInquiryController 创建咨询控制器
func NewInquiryController(
	inquiryRepo repository.CsInquiryRepository,
	configRepo repository.MarketConfigRepository,
	pushSvc *service.PushService,
) *InquiryController {
	return &InquiryController{
		inquiryRepo: inquiryRepo,
		configRepo:  configRepo,
		pushSvc:     pushSvc,
	}
}

// ==================== 咨询列表 ====================

// List 咨询列表
// GET /api/inquiries
func (c *InquiryController) List(ctx *gin.Context) {
	var req dto.ListInquiriesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.InquiryFilter{
		MarketConfigID: req.MarketConfigID,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}
	if req.Answered != "" {
		answered := req.Answered == "true"
		filter.Answered = &answered
	}

	inquiries, total, err := c.inquiryRepo.List(ctx, filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.InquiryVO, len(inquiries))
	for i, q := range inquiries {
		list[i] = dto.InquiryVO{
			ID:             q.ID,
			MarketConfigID: q.MarketConfigID,
			InquiryID:      q.InquiryID,
			WriterID:       q.WriterID,
			Title:          q.Title,
			Content:        q.Content,
			ReplyContent:   q.ReplyContent,
			Answered:       q.Answered,
			RepliedAt:      q.RepliedAt,
			InquiredAt:     q.InquiredAt,
			CreatedAt:      q.CreatedAt,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": dto.ListInquiriesResponse{
			Total: total,
			List:  list,
		},
	})
}

// ==================== 咨询回复 ====================

// Reply 回复咨询并推送到市场
// POST /api/inquiries/:id/reply
func (c *InquiryController) Reply(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	var req dto.ReplyInquiryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := c.inquiryRepo.GetByID(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "咨询不存在"})
		return
	}

	cfg, err := c.configRepo.GetByID(ctx, inquiry.MarketConfigID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "市场配置不存在"})
		return
	}

	result := c.pushSvc.PushReply(ctx, cfg, inquiry.InquiryID, req.Content)

	// 推送成功后落库回复内容与已答标记
	if result.OK && !result.Skipped {
		if err := c.inquiryRepo.MarkReplied(ctx, id, req.Content); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "data": result})
			return
		}
	}

	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadGateway
		if result.Category == service.CategoryInvalid {
			status = http.StatusBadRequest
		}
	}
	ctx.JSON(status, gin.H{"data": result})
}

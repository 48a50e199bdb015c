package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/response"
)

// PracticeHandler 诊所模块 HTTP 处理器
type PracticeHandler struct {
	practiceSvc service.PracticeService
	scoringSvc  service.ScoringService
}

// NewPracticeHandler 创建 PracticeHandler
func NewPracticeHandler(practiceSvc service.PracticeService, scoringSvc service.ScoringService) *PracticeHandler {
	return &PracticeHandler{practiceSvc: practiceSvc, scoringSvc: scoringSvc}
}

// ListPractices 诊所列表（状态 / 地区 / 关键字筛选）
// GET /api/v1/practices
func (h *PracticeHandler) ListPractices(c *gin.Context) {
	var req dto.PracticeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.practiceSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetPractice 诊所详情（医生、最近联系、评分）
// GET /api/v1/practices/:id
func (h *PracticeHandler) GetPractice(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.practiceSvc.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.handlePracticeError(c, err)
		return
	}

	response.OK(c, detail)
}

// CreatePractice 新增诊所
// POST /api/v1/practices
func (h *PracticeHandler) CreatePractice(c *gin.Context) {
	var req dto.CreatePracticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	practice, err := h.practiceSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handlePracticeError(c, err)
		return
	}

	response.Created(c, practice)
}

// UpdatePractice 更新诊所
// PUT /api/v1/practices/:id
func (h *PracticeHandler) UpdatePractice(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePracticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	practice, err := h.practiceSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handlePracticeError(c, err)
		return
	}

	response.OK(c, practice)
}

// UpdatePracticeStatus 切换诊所状态
// PUT /api/v1/practices/:id/status
func (h *PracticeHandler) UpdatePracticeStatus(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePracticeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	practice, err := h.practiceSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.handlePracticeError(c, err)
		return
	}

	response.OK(c, practice)
}

// GetScore 诊所关系评分
// GET /api/v1/practices/:id/score
func (h *PracticeHandler) GetScore(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	score, err := h.scoringSvc.Score(c.Request.Context(), id)
	if err != nil {
		h.handlePracticeError(c, err)
		return
	}

	response.OK(c, score)
}

// RepairFaxEmails 重新生成全部传真邮箱
// POST /api/v1/practices/repair-fax-emails
func (h *PracticeHandler) RepairFaxEmails(c *gin.Context) {
	result, err := h.practiceSvc.RepairFaxEmails(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// FillMissingFaxEmails 仅为缺失传真邮箱的诊所补全
// POST /api/v1/practices/fill-fax-emails
func (h *PracticeHandler) FillMissingFaxEmails(c *gin.Context) {
	n, err := h.practiceSvc.FillMissingFaxEmails(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"filled": n})
}

func (h *PracticeHandler) handlePracticeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPracticeNotFound):
		response.NotFound(c, 12001, "诊所不存在")
	case errors.Is(err, service.ErrPracticeNameRequired):
		response.BadRequest(c, 12002, "诊所名称不能为空")
	case errors.Is(err, service.ErrInvalidPhoneNumber):
		response.BadRequest(c, 12003, "电话 / 传真号码无效，需为 10 位美国号码")
	default:
		response.InternalError(c)
	}
}

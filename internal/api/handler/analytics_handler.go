package handler

import (
	"github.com/gin-gonic/gin"

	"referral-outreach/backend/internal/service"
	"referral-outreach/backend/pkg/response"
)

// AnalyticsHandler 仪表盘 / 评分 / 待办 HTTP 处理器
type AnalyticsHandler struct {
	dashboardSvc service.DashboardService
	scoringSvc   service.ScoringService
	overdueSvc   service.OverdueService
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(dashboardSvc service.DashboardService, scoringSvc service.ScoringService, overdueSvc service.OverdueService) *AnalyticsHandler {
	return &AnalyticsHandler{dashboardSvc: dashboardSvc, scoringSvc: scoringSvc, overdueSvc: overdueSvc}
}

// GetDashboard 仪表盘统计
// GET /api/v1/dashboard
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.dashboardSvc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}

// ListOverdue 待办事项（按逾期天数倒序）
// GET /api/v1/overdue
func (h *AnalyticsHandler) ListOverdue(c *gin.Context) {
	items, err := h.overdueSvc.OverdueItems(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// ListScores 全部诊所关系评分（分数升序）
// GET /api/v1/scores?status=Active
func (h *AnalyticsHandler) ListScores(c *gin.Context) {
	scores, err := h.scoringSvc.ListScores(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": scores})
}

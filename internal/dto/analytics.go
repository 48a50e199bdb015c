package dto

// ── 分析模块 DTO ──

// ScoreBreakdown 关系评分各项得分（均已按上限截断）
type ScoreBreakdown struct {
	Recency   int `json:"recency"`
	Frequency int `json:"frequency"`
	Lunches   int `json:"lunches"`
	Cookies   int `json:"cookies"`
	Variety   int `json:"variety"`
}

// ScoreResponse 诊所关系评分
type ScoreResponse struct {
	PracticeID   uint64         `json:"practice_id"`
	PracticeName string         `json:"practice_name"`
	Score        int            `json:"score"`
	Label        string         `json:"label"` // Strong | Moderate | Needs Attention
	Breakdown    ScoreBreakdown `json:"breakdown"`
}

// OverdueItem 待办（派生数据，不落库）
type OverdueItem struct {
	Type        string `json:"type"` // No Contact | Follow-up Overdue | Thank You Letter | Upcoming Lunch
	PracticeID  uint64 `json:"practice_id"`
	Practice    string `json:"practice"`
	Detail      string `json:"detail"`
	DaysOverdue int    `json:"days_overdue"`
	Priority    string `json:"priority"` // high | medium
}

// DashboardStats 仪表盘统计
type DashboardStats struct {
	TotalPractices        int64 `json:"total_practices"`
	TotalProviders        int64 `json:"total_providers"`
	ContactsThisMonth     int64 `json:"contacts_this_month"`
	CallsThisMonth        int64 `json:"calls_this_month"`
	EmailsThisMonth       int64 `json:"emails_this_month"`
	FaxesThisMonth        int64 `json:"faxes_this_month"`
	LunchesScheduled      int64 `json:"lunches_scheduled"`
	LunchesCompletedMonth int64 `json:"lunches_completed_month"`
	LunchesCompletedTotal int64 `json:"lunches_completed_total"`
	CookieVisitsThisMonth int64 `json:"cookie_visits_this_month"`
	CookieVisitsTotal     int64 `json:"cookie_visits_total"`
	PendingThankYous      int64 `json:"pending_thank_yous"`
	FlyersSentThisMonth   int64 `json:"flyers_sent_this_month"`
	HuntsvillePractices   int64 `json:"huntsville_practices"`
	WoodlandsPractices    int64 `json:"woodlands_practices"`
	OverdueItems          int   `json:"overdue_items"`
	HighPriorityItems     int   `json:"high_priority_items"`
}

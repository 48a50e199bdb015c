package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
	"referral-outreach/backend/pkg/transport"
)

// ── Mock 聚合 ──

// mockRepos 持有各 mock 的具体类型，便于测试直接预置 / 检查数据
type mockRepos struct {
	practice     *mockPracticeRepo
	provider     *mockProviderRepo
	providerMove *mockProviderMoveRepo
	contact      *mockContactLogRepo
	lunch        *mockLunchRepo
	callAttempt  *mockCallAttemptRepo
	cookie       *mockCookieVisitRepo
	thankYou     *mockThankYouRepo
	flyer        *mockFlyerRepo
	event        *mockEventRepo
	member       *mockTeamMemberRepo
	importRun    *mockImportRunRepo
	analytics    *mockAnalyticsRepo
}

func newTestRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		practice:     newMockPracticeRepo(),
		provider:     newMockProviderRepo(),
		providerMove: newMockProviderMoveRepo(),
		contact:      newMockContactLogRepo(),
		lunch:        newMockLunchRepo(),
		callAttempt:  newMockCallAttemptRepo(),
		cookie:       newMockCookieVisitRepo(),
		thankYou:     newMockThankYouRepo(),
		flyer:        newMockFlyerRepo(),
		event:        newMockEventRepo(),
		member:       newMockTeamMemberRepo(),
		importRun:    newMockImportRunRepo(),
		analytics:    &mockAnalyticsRepo{},
	}
	repo := &repository.Repository{
		Practice:     m.practice,
		Provider:     m.provider,
		ProviderMove: m.providerMove,
		ContactLog:   m.contact,
		Lunch:        m.lunch,
		CallAttempt:  m.callAttempt,
		CookieVisit:  m.cookie,
		ThankYou:     m.thankYou,
		Flyer:        m.flyer,
		Event:        m.event,
		TeamMember:   m.member,
		ImportRun:    m.importRun,
		Analytics:    m.analytics,
	}
	return repo, m
}

// fixedClock 固定时间
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func ptrTime(t time.Time) *time.Time { return &t }

// ── Mock PracticeRepository ──

type mockPracticeRepo struct {
	practices map[uint64]*model.Practice
	nextID    uint64
}

func newMockPracticeRepo() *mockPracticeRepo {
	return &mockPracticeRepo{practices: make(map[uint64]*model.Practice)}
}

func (m *mockPracticeRepo) Create(_ context.Context, practice *model.Practice) error {
	if practice.ID == 0 {
		m.nextID++
		practice.ID = m.nextID
	} else if practice.ID > m.nextID {
		m.nextID = practice.ID
	}
	cp := *practice
	m.practices[practice.ID] = &cp
	return nil
}

func (m *mockPracticeRepo) GetByID(_ context.Context, id uint64) (*model.Practice, error) {
	if p, ok := m.practices[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPracticeRepo) Update(_ context.Context, practice *model.Practice) error {
	cp := *practice
	m.practices[practice.ID] = &cp
	return nil
}

func (m *mockPracticeRepo) UpdateFaxEmail(_ context.Context, id uint64, faxEmail string) error {
	if p, ok := m.practices[id]; ok {
		p.FaxEmail = faxEmail
	}
	return nil
}

func (m *mockPracticeRepo) sorted() []model.Practice {
	result := make([]model.Practice, 0, len(m.practices))
	for _, p := range m.practices {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockPracticeRepo) List(_ context.Context, filter repository.PracticeFilter) ([]model.Practice, int64, error) {
	var result []model.Practice
	for _, p := range m.sorted() {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Location != "" && p.LocationCategory != filter.Location {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Keyword)) {
			continue
		}
		result = append(result, p)
	}
	total := int64(len(result))
	if filter.Limit > 0 {
		end := filter.Offset + filter.Limit
		if filter.Offset >= len(result) {
			return nil, total, nil
		}
		if end > len(result) {
			end = len(result)
		}
		result = result[filter.Offset:end]
	}
	return result, total, nil
}

func (m *mockPracticeRepo) ListWithFax(_ context.Context) ([]model.Practice, error) {
	var result []model.Practice
	for _, p := range m.sorted() {
		if p.Fax != "" {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPracticeRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, p := range m.practices {
		if status == "" || p.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockPracticeRepo) CountByLocation(_ context.Context, status string) ([]repository.LocationCount, error) {
	counts := map[string]int64{}
	for _, p := range m.practices {
		if status == "" || p.Status == status {
			counts[p.LocationCategory]++
		}
	}
	var result []repository.LocationCount
	for loc, n := range counts {
		result = append(result, repository.LocationCount{LocationCategory: loc, Count: n})
	}
	return result, nil
}

// ── Mock ProviderRepository ──

type mockProviderRepo struct {
	providers map[uint64]*model.Provider
	nextID    uint64
}

func newMockProviderRepo() *mockProviderRepo {
	return &mockProviderRepo{providers: make(map[uint64]*model.Provider)}
}

func (m *mockProviderRepo) Create(_ context.Context, provider *model.Provider) error {
	if provider.ID == 0 {
		m.nextID++
		provider.ID = m.nextID
	} else if provider.ID > m.nextID {
		m.nextID = provider.ID
	}
	cp := *provider
	m.providers[provider.ID] = &cp
	return nil
}

func (m *mockProviderRepo) BatchCreate(ctx context.Context, providers []model.Provider) error {
	for i := range providers {
		if err := m.Create(ctx, &providers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockProviderRepo) GetByID(_ context.Context, id uint64) (*model.Provider, error) {
	if p, ok := m.providers[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProviderRepo) Update(_ context.Context, provider *model.Provider) error {
	cp := *provider
	m.providers[provider.ID] = &cp
	return nil
}

func (m *mockProviderRepo) Delete(_ context.Context, id uint64) error {
	delete(m.providers, id)
	return nil
}

func (m *mockProviderRepo) sorted() []model.Provider {
	result := make([]model.Provider, 0, len(m.providers))
	for _, p := range m.providers {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockProviderRepo) ListByPractice(_ context.Context, practiceID uint64, activeOnly bool) ([]model.Provider, error) {
	var result []model.Provider
	for _, p := range m.sorted() {
		if p.PracticeID == nil || *p.PracticeID != practiceID {
			continue
		}
		if activeOnly && p.Status != model.StatusActive {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *mockProviderRepo) List(_ context.Context, status string, offset, limit int) ([]model.Provider, int64, error) {
	var result []model.Provider
	for _, p := range m.sorted() {
		if status == "" || p.Status == status {
			result = append(result, p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockProviderRepo) ListAll(_ context.Context) ([]model.Provider, error) {
	return m.sorted(), nil
}

func (m *mockProviderRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, p := range m.providers {
		if status == "" || p.Status == status {
			n++
		}
	}
	return n, nil
}

// ── Mock ProviderMoveRepository ──

type mockProviderMoveRepo struct {
	moves  []model.ProviderMove
	nextID uint64
}

func newMockProviderMoveRepo() *mockProviderMoveRepo {
	return &mockProviderMoveRepo{}
}

func (m *mockProviderMoveRepo) Create(_ context.Context, move *model.ProviderMove) error {
	if move.ID == 0 {
		m.nextID++
		move.ID = m.nextID
	} else if move.ID > m.nextID {
		m.nextID = move.ID
	}
	m.moves = append(m.moves, *move)
	return nil
}

func (m *mockProviderMoveRepo) ListByProvider(_ context.Context, providerID uint64) ([]model.ProviderMove, error) {
	var result []model.ProviderMove
	for i := len(m.moves) - 1; i >= 0; i-- {
		if m.moves[i].ProviderID == providerID {
			result = append(result, m.moves[i])
		}
	}
	return result, nil
}

func (m *mockProviderMoveRepo) ListAll(_ context.Context) ([]model.ProviderMove, error) {
	return append([]model.ProviderMove(nil), m.moves...), nil
}

// ── Mock ContactLogRepository ──

type mockContactLogRepo struct {
	entries []model.ContactLog
	nextID  uint64
}

func newMockContactLogRepo() *mockContactLogRepo {
	return &mockContactLogRepo{}
}

func (m *mockContactLogRepo) Create(_ context.Context, entry *model.ContactLog) error {
	if entry.ID == 0 {
		m.nextID++
		entry.ID = m.nextID
	} else if entry.ID > m.nextID {
		m.nextID = entry.ID
	}
	m.entries = append(m.entries, *entry)
	return nil
}

// ordered 日期倒序，空日期排最后
func (m *mockContactLogRepo) ordered(filter func(model.ContactLog) bool) []model.ContactLog {
	var result []model.ContactLog
	for _, e := range m.entries {
		if filter(e) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].ContactDate, result[j].ContactDate
		switch {
		case a == nil && b == nil:
			return result[i].ID > result[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return result[i].ID > result[j].ID
		}
	})
	return result
}

func (m *mockContactLogRepo) ListByPractice(_ context.Context, practiceID uint64, limit int) ([]model.ContactLog, error) {
	result := m.ordered(func(e model.ContactLog) bool { return e.PracticeID == practiceID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockContactLogRepo) ListRecent(_ context.Context, limit int) ([]model.ContactLog, error) {
	result := m.ordered(func(model.ContactLog) bool { return true })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockContactLogRepo) CountByPracticeAndType(_ context.Context, practiceID uint64, contactType string) (int64, error) {
	var n int64
	for _, e := range m.entries {
		if e.PracticeID == practiceID && e.ContactType == contactType {
			n++
		}
	}
	return n, nil
}

func (m *mockContactLogRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, e := range m.entries {
		if e.ContactDate != nil && !e.ContactDate.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockContactLogRepo) CallStats(_ context.Context, practiceID uint64) (*repository.PracticeCallStat, error) {
	stat := &repository.PracticeCallStat{PracticeID: practiceID}
	for _, e := range m.entries {
		if e.PracticeID != practiceID {
			continue
		}
		if e.ContactType == model.ContactPhoneCall {
			stat.CallCount++
		}
		if e.Outcome == model.OutcomeScheduledLunch {
			stat.LunchScheduled = true
		}
	}
	return stat, nil
}

// ── Mock LunchRepository ──

type mockLunchRepo struct {
	lunches map[uint64]*model.Lunch
	nextID  uint64
}

func newMockLunchRepo() *mockLunchRepo {
	return &mockLunchRepo{lunches: make(map[uint64]*model.Lunch)}
}

func (m *mockLunchRepo) Create(_ context.Context, lunch *model.Lunch) error {
	if lunch.ID == 0 {
		m.nextID++
		lunch.ID = m.nextID
	} else if lunch.ID > m.nextID {
		m.nextID = lunch.ID
	}
	cp := *lunch
	m.lunches[lunch.ID] = &cp
	return nil
}

func (m *mockLunchRepo) GetByID(_ context.Context, id uint64) (*model.Lunch, error) {
	if l, ok := m.lunches[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLunchRepo) Update(_ context.Context, lunch *model.Lunch) error {
	cp := *lunch
	m.lunches[lunch.ID] = &cp
	return nil
}

func (m *mockLunchRepo) list(filter func(*model.Lunch) bool) []model.Lunch {
	var result []model.Lunch
	for _, l := range m.lunches {
		if filter(l) {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockLunchRepo) ListByPractice(_ context.Context, practiceID uint64, status string) ([]model.Lunch, error) {
	return m.list(func(l *model.Lunch) bool {
		return l.PracticeID == practiceID && (status == "" || l.Status == status)
	}), nil
}

func (m *mockLunchRepo) ListByStatus(_ context.Context, status string) ([]model.Lunch, error) {
	return m.list(func(l *model.Lunch) bool { return status == "" || l.Status == status }), nil
}

func (m *mockLunchRepo) CountByStatus(_ context.Context) ([]repository.StatusCount, error) {
	counts := map[string]int64{}
	for _, l := range m.lunches {
		counts[l.Status]++
	}
	var result []repository.StatusCount
	for status, n := range counts {
		result = append(result, repository.StatusCount{Status: status, Count: n})
	}
	return result, nil
}

// ── Mock CallAttemptRepository ──

type mockCallAttemptRepo struct {
	attempts []model.CallAttempt
	nextID   uint64
}

func newMockCallAttemptRepo() *mockCallAttemptRepo {
	return &mockCallAttemptRepo{}
}

func (m *mockCallAttemptRepo) Create(_ context.Context, attempt *model.CallAttempt) error {
	if attempt.ID == 0 {
		m.nextID++
		attempt.ID = m.nextID
	} else if attempt.ID > m.nextID {
		m.nextID = attempt.ID
	}
	m.attempts = append(m.attempts, *attempt)
	return nil
}

func (m *mockCallAttemptRepo) ListByLunch(_ context.Context, lunchID uint64) ([]model.CallAttempt, error) {
	var result []model.CallAttempt
	for _, a := range m.attempts {
		if a.LunchID != nil && *a.LunchID == lunchID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockCallAttemptRepo) CountByLunch(ctx context.Context, lunchID uint64) (int64, error) {
	list, _ := m.ListByLunch(ctx, lunchID)
	return int64(len(list)), nil
}

func (m *mockCallAttemptRepo) ListAll(_ context.Context) ([]model.CallAttempt, error) {
	return append([]model.CallAttempt(nil), m.attempts...), nil
}

// ── Mock CookieVisitRepository ──

type mockCookieVisitRepo struct {
	visits []model.CookieVisit
	nextID uint64
}

func newMockCookieVisitRepo() *mockCookieVisitRepo {
	return &mockCookieVisitRepo{}
}

func (m *mockCookieVisitRepo) Create(_ context.Context, visit *model.CookieVisit) error {
	if visit.ID == 0 {
		m.nextID++
		visit.ID = m.nextID
	} else if visit.ID > m.nextID {
		m.nextID = visit.ID
	}
	m.visits = append(m.visits, *visit)
	return nil
}

func (m *mockCookieVisitRepo) ListByPractice(_ context.Context, practiceID uint64) ([]model.CookieVisit, error) {
	var result []model.CookieVisit
	for _, v := range m.visits {
		if v.PracticeID == practiceID {
			result = append(result, v)
		}
	}
	return result, nil
}

func (m *mockCookieVisitRepo) ListRecent(_ context.Context, limit int) ([]model.CookieVisit, error) {
	result := append([]model.CookieVisit(nil), m.visits...)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockCookieVisitRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, v := range m.visits {
		if v.VisitDate != nil && !v.VisitDate.Before(since) {
			n++
		}
	}
	return n, nil
}

// ── Mock ThankYouRepository ──

type mockThankYouRepo struct {
	letters map[uint64]*model.ThankYouLetter
	nextID  uint64
}

func newMockThankYouRepo() *mockThankYouRepo {
	return &mockThankYouRepo{letters: make(map[uint64]*model.ThankYouLetter)}
}

func (m *mockThankYouRepo) Create(_ context.Context, letter *model.ThankYouLetter) error {
	if letter.ID == 0 {
		m.nextID++
		letter.ID = m.nextID
	} else if letter.ID > m.nextID {
		m.nextID = letter.ID
	}
	cp := *letter
	m.letters[letter.ID] = &cp
	return nil
}

func (m *mockThankYouRepo) BatchCreate(ctx context.Context, letters []model.ThankYouLetter) error {
	for i := range letters {
		if err := m.Create(ctx, &letters[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockThankYouRepo) GetByID(_ context.Context, id uint64) (*model.ThankYouLetter, error) {
	if l, ok := m.letters[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockThankYouRepo) list(filter func(*model.ThankYouLetter) bool) []model.ThankYouLetter {
	var result []model.ThankYouLetter
	for _, l := range m.letters {
		if filter(l) {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockThankYouRepo) ListByPractice(_ context.Context, practiceID uint64, status string) ([]model.ThankYouLetter, error) {
	return m.list(func(l *model.ThankYouLetter) bool {
		return l.PracticeID == practiceID && (status == "" || l.Status == status)
	}), nil
}

func (m *mockThankYouRepo) ListByStatus(_ context.Context, status string) ([]model.ThankYouLetter, error) {
	return m.list(func(l *model.ThankYouLetter) bool { return status == "" || l.Status == status }), nil
}

func (m *mockThankYouRepo) MarkMailed(_ context.Context, ids []uint64, mailedAt time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		if l, ok := m.letters[id]; ok && l.Status == model.ThankYouPending {
			l.Status = model.ThankYouMailed
			l.DateMailed = ptrTime(mailedAt)
			n++
		}
	}
	return n, nil
}

func (m *mockThankYouRepo) MarkAllMailed(_ context.Context, mailedAt time.Time) (int64, error) {
	var n int64
	for _, l := range m.letters {
		if l.Status == model.ThankYouPending {
			l.Status = model.ThankYouMailed
			l.DateMailed = ptrTime(mailedAt)
			n++
		}
	}
	return n, nil
}

func (m *mockThankYouRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	return int64(len(m.list(func(l *model.ThankYouLetter) bool { return status == "" || l.Status == status }))), nil
}

// ── Mock FlyerRepository ──

type mockFlyerRepo struct {
	campaigns  []model.FlyerCampaign
	recipients []model.FlyerRecipient
	nextID     uint64
}

func newMockFlyerRepo() *mockFlyerRepo {
	return &mockFlyerRepo{}
}

func (m *mockFlyerRepo) CreateCampaign(_ context.Context, campaign *model.FlyerCampaign) error {
	if campaign.ID == 0 {
		m.nextID++
		campaign.ID = m.nextID
	} else if campaign.ID > m.nextID {
		m.nextID = campaign.ID
	}
	m.campaigns = append(m.campaigns, *campaign)
	return nil
}

func (m *mockFlyerRepo) CreateRecipient(_ context.Context, recipient *model.FlyerRecipient) error {
	if recipient.ID == 0 {
		m.nextID++
		recipient.ID = m.nextID
	} else if recipient.ID > m.nextID {
		m.nextID = recipient.ID
	}
	m.recipients = append(m.recipients, *recipient)
	return nil
}

func (m *mockFlyerRepo) ListCampaigns(_ context.Context, limit int) ([]model.FlyerCampaignSummary, error) {
	var result []model.FlyerCampaignSummary
	for i := len(m.campaigns) - 1; i >= 0; i-- {
		c := m.campaigns[i]
		s := model.FlyerCampaignSummary{FlyerCampaign: c}
		for _, r := range m.recipients {
			if r.CampaignID != c.ID {
				continue
			}
			s.RecipientCount++
			if r.Status == model.FlyerSent {
				s.SentCount++
			} else {
				s.FailedCount++
			}
		}
		result = append(result, s)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockFlyerRepo) ListRecipients(_ context.Context, campaignID uint64) ([]model.FlyerRecipient, error) {
	var result []model.FlyerRecipient
	for _, r := range m.recipients {
		if r.CampaignID == campaignID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockFlyerRepo) LastSentByPractice(_ context.Context) ([]repository.PracticeLastFlyer, error) {
	sentAt := map[uint64]time.Time{}
	for _, c := range m.campaigns {
		sentAt[c.ID] = c.SentDate
	}
	last := map[uint64]time.Time{}
	for _, r := range m.recipients {
		if r.Status != model.FlyerSent {
			continue
		}
		if t := sentAt[r.CampaignID]; t.After(last[r.PracticeID]) {
			last[r.PracticeID] = t
		}
	}
	var result []repository.PracticeLastFlyer
	for pid, t := range last {
		result = append(result, repository.PracticeLastFlyer{PracticeID: pid, LastSent: t})
	}
	return result, nil
}

func (m *mockFlyerRepo) CountCampaignsSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, c := range m.campaigns {
		if !c.SentDate.Before(since) {
			n++
		}
	}
	return n, nil
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	events map[uint64]*model.Event
	nextID uint64
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[uint64]*model.Event)}
}

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	if event.ID == 0 {
		m.nextID++
		event.ID = m.nextID
	} else if event.ID > m.nextID {
		m.nextID = event.ID
	}
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	if e, ok := m.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event) error {
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id uint64) error {
	delete(m.events, id)
	for _, e := range m.events {
		if e.NextEventID != nil && *e.NextEventID == id {
			e.NextEventID = nil
		}
	}
	return nil
}

func (m *mockEventRepo) List(_ context.Context, filter repository.EventFilter) ([]model.Event, error) {
	var result []model.Event
	for _, e := range m.events {
		if filter.PracticeID != nil && (e.PracticeID == nil || *e.PracticeID != *filter.PracticeID) {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.From != nil && (e.ScheduledDate == nil || e.ScheduledDate.Before(*filter.From)) {
			continue
		}
		if filter.To != nil && (e.ScheduledDate == nil || !e.ScheduledDate.Before(*filter.To)) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ── Mock TeamMemberRepository ──

type mockTeamMemberRepo struct {
	members map[uint64]*model.TeamMember
	nextID  uint64
}

func newMockTeamMemberRepo() *mockTeamMemberRepo {
	return &mockTeamMemberRepo{members: make(map[uint64]*model.TeamMember)}
}

func (m *mockTeamMemberRepo) Create(_ context.Context, member *model.TeamMember) error {
	if member.ID == 0 {
		m.nextID++
		member.ID = m.nextID
	} else if member.ID > m.nextID {
		m.nextID = member.ID
	}
	cp := *member
	m.members[member.ID] = &cp
	return nil
}

func (m *mockTeamMemberRepo) GetByID(_ context.Context, id uint64) (*model.TeamMember, error) {
	if u, ok := m.members[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamMemberRepo) GetByUsername(_ context.Context, username string) (*model.TeamMember, error) {
	for _, u := range m.members {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamMemberRepo) Update(_ context.Context, member *model.TeamMember) error {
	cp := *member
	m.members[member.ID] = &cp
	return nil
}

func (m *mockTeamMemberRepo) List(_ context.Context) ([]model.TeamMember, error) {
	var result []model.TeamMember
	for _, u := range m.members {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ── Mock ImportRunRepository ──

type mockImportRunRepo struct {
	runs   []model.ImportRun
	nextID uint64
}

func newMockImportRunRepo() *mockImportRunRepo {
	return &mockImportRunRepo{}
}

func (m *mockImportRunRepo) Create(_ context.Context, run *model.ImportRun) error {
	if run.ID == 0 {
		m.nextID++
		run.ID = m.nextID
	} else if run.ID > m.nextID {
		m.nextID = run.ID
	}
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockImportRunRepo) GetByID(_ context.Context, id uint64) (*model.ImportRun, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			cp := m.runs[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockImportRunRepo) List(_ context.Context, limit int) ([]model.ImportRun, error) {
	var result []model.ImportRun
	for i := len(m.runs) - 1; i >= 0; i-- {
		result = append(result, m.runs[i])
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ── Mock AnalyticsRepository ──

type mockAnalyticsRepo struct {
	counts repository.DashboardCounts
}

func (m *mockAnalyticsRepo) DashboardCounts(_ context.Context, _, _ time.Time) (*repository.DashboardCounts, error) {
	cp := m.counts
	return &cp, nil
}

// ── 外部依赖 Fake ──

// fakeStore 内存对象存储
type fakeStore struct {
	objects map[string][]byte
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Save(_ context.Context, key string, data []byte, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStore) Load(_ context.Context, key string) ([]byte, error) {
	if data, ok := f.objects[key]; ok {
		return data, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeSender 记录发出的消息；failFor 中的收件地址返回 err
type fakeSender struct {
	sent    []transport.Message
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, msg transport.Message) error {
	if err, ok := f.failFor[msg.To]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeLocker 记录加锁 / 释放次数；err 非空时加锁失败
type fakeLocker struct {
	locks    int
	released int
	err      error
}

func (f *fakeLocker) Lock(_ context.Context, _ string, _ time.Duration) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.locks++
	return func() { f.released++ }, nil
}

// fakeRevoker 内存黑名单
type fakeRevoker struct {
	revoked map[string]bool
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]bool)}
}

func (f *fakeRevoker) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	f.revoked[jti] = true
	return nil
}

func (f *fakeRevoker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

// testOutreachConfig 与默认配置一致的阈值
func testOutreachConfig() *config.OutreachConfig {
	return &config.OutreachConfig{
		LunchFollowupDays:   90,
		CookieVisitDays:     60,
		FlyerSendDays:       30,
		ThankYouGraceDays:   7,
		HighPriorityDays:    120,
		HuntsvilleZips:      []string{"77320", "77340", "77341", "77342", "77343", "77344"},
		WoodlandsZips:       []string{"77380", "77381", "77382", "77384", "77385", "77386", "77387", "77389"},
		FaxEmailDomain:      DefaultFaxEmailDomain,
		DefaultTeamMember:   "Robbie",
		FailedCallThreshold: 3,
	}
}

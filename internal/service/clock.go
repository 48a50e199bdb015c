package service

import (
	"errors"
	"math"
	"strings"
	"time"
)

// ErrInvalidDate 日期格式无效
var ErrInvalidDate = errors.New("日期格式无效，应为 YYYY-MM-DD")

// Clock 当前时间来源（测试中替换为固定时间）
type Clock func() time.Time

// daysSince 与 t 相差的整天数（向下取整，t 在未来时为负数）
func daysSince(now, t time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// startOfDay 当天 00:00（保留时区）
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfMonth 当月 1 日 00:00
func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// parseDateOr 解析 "2006-01-02"；为空时返回 fallback
func parseDateOr(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, fallback.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// parseOptionalDate 解析可选日期；为空返回 nil
func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}

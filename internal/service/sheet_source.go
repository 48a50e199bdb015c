package service

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrSheetNotFound 工作簿中没有指定的工作表
	ErrSheetNotFound = errors.New("工作簿中找不到指定工作表")
	// ErrInvalidWorkbook 文件不是可解析的 .xlsx
	ErrInvalidWorkbook = errors.New("无法解析 Excel 文件")
)

// SheetSource 表格数据源
//
// Rows 返回整张工作表，第 0 行为表头；行内缺失的尾部单元格不补齐，调用方按列取值时需容忍越界。
type SheetSource interface {
	Rows(sheet string) ([][]string, error)
	Close() error
}

// excelSource 基于 excelize 的 .xlsx 数据源
type excelSource struct {
	f *excelize.File
}

// OpenWorkbook 从内存中的 .xlsx 内容打开数据源
func OpenWorkbook(data []byte) (SheetSource, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	return &excelSource{f: f}, nil
}

// Rows 读取原始单元格值；日期单元格保留 Excel 序列号，由调用方按列转换
func (s *excelSource) Rows(sheet string) ([][]string, error) {
	idx, err := s.f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	return s.f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func (s *excelSource) Close() error {
	return s.f.Close()
}

// ── 单元格值转换 ──

// 常见的 Excel 日期序列号范围（1954 ~ 2119 年），用于区分日期与普通数字
const (
	minExcelDateSerial = 20000
	maxExcelDateSerial = 80000
)

// textDateLayouts 文本形式日期支持的写法
var textDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// cellDate 将单元格值解析为日期：Excel 序列号或常见文本日期
func cellDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < minExcelDateSerial || serial > maxExcelDateSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
	}
	for _, layout := range textDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cellText 展示用文本：日期序列号转为 YYYY-MM-DD，其余原样返回
func cellText(raw string, loc *time.Location) string {
	raw = strings.TrimSpace(raw)
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, ok := cellDate(raw, loc); ok {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

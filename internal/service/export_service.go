package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoPractices  = errors.New("没有符合条件的诊所")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// practiceExportColumns 诊所导出表头
var practiceExportColumns = []string{
	"Practice Name", "Address", "Zip", "Location", "Phone", "Fax", "Fax Email",
	"Contact Person", "Email", "Status", "Referral Volume", "Providers", "Last Contact", "Notes",
}

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportPractices 导出诊所列表为 Excel，筛选条件同诊所列表（忽略分页）
	ExportPractices(ctx context.Context, req *dto.PracticeListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, now Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, now: now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportPractices — 导出诊所为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Practices"，第 1 行表头，每个诊所一行
//   - Providers 列为该诊所全部医生姓名（换行分隔）
//   - Last Contact 为最近一条带日期的联系记录
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportPractices(ctx context.Context, req *dto.PracticeListRequest) (*bytes.Buffer, string, error) {
	// 1. 查询诊所
	practices, _, err := s.repo.Practice.List(ctx, repository.PracticeFilter{
		Status:   req.Status,
		Location: req.Location,
		Keyword:  strings.TrimSpace(req.Keyword),
	})
	if err != nil {
		s.logger.Error("查询诊所失败", zap.Error(err))
		return nil, "", err
	}
	if len(practices) == 0 {
		return nil, "", ErrExportNoPractices
	}

	// 2. 医生按诊所分组
	providers, err := s.repo.Provider.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询医生失败", zap.Error(err))
		return nil, "", err
	}
	byPractice := lo.GroupBy(
		lo.Filter(providers, func(p model.Provider, _ int) bool { return p.PracticeID != nil }),
		func(p model.Provider) uint64 { return *p.PracticeID },
	)

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Practices"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	for i, title := range practiceExportColumns {
		f.SetCellValue(sheetName, cell(colName(i), 1), title)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(practiceExportColumns)-1), 1), headerStyle)
	f.SetColWidth(sheetName, "A", "B", 36)
	f.SetColWidth(sheetName, "C", "K", 16)
	f.SetColWidth(sheetName, "L", "L", 30)
	f.SetColWidth(sheetName, "M", "M", 14)
	f.SetColWidth(sheetName, "N", "N", 48)

	// 数据行
	row := 2
	for _, p := range practices {
		lastContact := ""
		recent, err := s.repo.ContactLog.ListByPractice(ctx, p.ID, 1)
		if err != nil {
			s.logger.Error("查询最近联系失败", zap.Uint64("practice_id", p.ID), zap.Error(err))
			return nil, "", err
		}
		if len(recent) > 0 && recent[0].ContactDate != nil {
			lastContact = recent[0].ContactDate.Format(dto.DateLayout)
		}

		names := lo.Map(byPractice[p.ID], func(pr model.Provider, _ int) string { return pr.Name })
		values := []any{
			p.Name, p.Address, p.ZipCode, p.LocationCategory, p.Phone, p.Fax, p.FaxEmail,
			p.ContactPerson, p.Email, p.Status, p.ReferralVolume, strings.Join(names, "\n"), lastContact, p.Notes,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(practiceExportColumns)-1), row-1), wrapStyle)

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("practices_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

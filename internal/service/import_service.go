package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"referral-outreach/backend/config"
	"referral-outreach/backend/internal/dto"
	"referral-outreach/backend/internal/model"
	"referral-outreach/backend/internal/repository"
	"referral-outreach/backend/pkg/blobstore"
	pkgerrors "referral-outreach/backend/pkg/errors"
)

var (
	ErrImportEmpty       = errors.New("导入文件为空")
	ErrImportRunNotFound = errors.New("导入记录不存在")
)

const (
	importLockName    = "import:spreadsheet"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	importContactNote = "Imported from Excel"
	branchSuffix      = " (Branch)"
)

// 导入字段
const (
	FieldPracticeName = "practice_name"
	FieldAddress      = "address"
	FieldContactInfo  = "contact_info"
	FieldProviders    = "providers"
	FieldDetails      = "details"
	FieldNextFollowup = "next_followup"
	FieldLastContact  = "last_contact"
)

// importField 表头别名与找不到表头时的默认列（从 0 开始）
type importField struct {
	name     string
	aliases  []string
	fallback int
}

var importFields = []importField{
	{FieldPracticeName, []string{"practice name", "practice", "name", "office name", "clinic name"}, 0},
	{FieldAddress, []string{"address", "location", "office address"}, 1},
	{FieldContactInfo, []string{"contact information", "contact info", "phone/fax", "phone fax", "contact"}, 2},
	{FieldProviders, []string{"providers", "provider", "doctors", "physician"}, 3},
	{FieldDetails, []string{"details", "notes", "detail"}, 4},
	{FieldNextFollowup, []string{"next follow up", "next followup", "follow up", "followup"}, 5},
	{FieldLastContact, []string{"last contact date", "last contact", "last contacted"}, 7},
}

// DetectColumns 按表头别名确定各字段所在列；同名表头以靠后的一列为准
func DetectColumns(header []string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			byName[h] = i
		}
	}

	cols := make(map[string]int, len(importFields))
	for _, f := range importFields {
		cols[f.name] = f.fallback
		for _, alias := range f.aliases {
			if idx, ok := byName[alias]; ok {
				cols[f.name] = idx
				break
			}
		}
	}
	return cols
}

// Locker 分布式互斥锁（Redis 实现），nil 表示不加锁
type Locker interface {
	Lock(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

// ImportService 表格导入业务接口
type ImportService interface {
	Import(ctx context.Context, fileName string, data []byte, importedBy string) (*dto.ImportResult, error)
	ListRuns(ctx context.Context, limit int) ([]model.ImportRun, error)
	GetRun(ctx context.Context, id uint64) (*model.ImportRun, error)
}

type importService struct {
	outreach   *config.OutreachConfig
	cfg        *config.ImportConfig
	repo       *repository.Repository
	classifier *LocationClassifier
	store      blobstore.Store
	locker     Locker
	open       func(data []byte) (SheetSource, error)
	now        Clock
	logger     *zap.Logger
}

// NewImportService 创建 ImportService 实例；store / locker 可为 nil
func NewImportService(
	outreach *config.OutreachConfig,
	cfg *config.ImportConfig,
	repo *repository.Repository,
	classifier *LocationClassifier,
	store blobstore.Store,
	locker Locker,
	now Clock,
	logger *zap.Logger,
) ImportService {
	return &importService{
		outreach:   outreach,
		cfg:        cfg,
		repo:       repo,
		classifier: classifier,
		store:      store,
		locker:     locker,
		open:       OpenWorkbook,
		now:        now,
		logger:     logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Import — 表格导入
// ═══════════════════════════════════════════════════════════
//
// 流程：加锁 → 备份原文件 → 识别列 → 逐行写入诊所 / 联系记录 / 医生 → 补齐传真邮箱 → 记录导入批次。
// 行级数据问题只计入统计与 errors，不中断导入；存储错误直接返回。

func (s *importService) Import(ctx context.Context, fileName string, data []byte, importedBy string) (*dto.ImportResult, error) {
	if len(data) == 0 {
		return nil, ErrImportEmpty
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, importLockName, s.cfg.LockTTL)
		switch {
		case errors.Is(err, pkgerrors.ErrLocked):
			return nil, err
		case err != nil:
			// Redis 不可用时不加锁继续导入
			s.logger.Warn("获取导入锁失败，本次导入不加锁", zap.Error(err))
		default:
			defer unlock()
		}
	}

	src, err := s.open(data)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	rows, err := src.Rows(s.cfg.SheetName)
	if err != nil {
		s.logger.Warn("读取工作表失败", zap.String("sheet", s.cfg.SheetName), zap.Error(err))
		return nil, err
	}

	now := s.now()
	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}

	if s.store != nil {
		key := path.Join("imports", now.Format("2006/01/02"), uuid.NewString()+"-"+path.Base(fileName))
		if err := s.store.Save(ctx, key, data, xlsxContentType); err != nil {
			s.logger.Error("备份导入文件失败", zap.String("key", key), zap.Error(err))
			return nil, fmt.Errorf("备份导入文件失败: %w", err)
		}
		result.BackupKey = key
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	result.ColumnMap = DetectColumns(header)

	process := func(repo *repository.Repository) error {
		if err := s.importRows(ctx, repo, rows, result); err != nil {
			return err
		}
		fixed, err := fillMissingFaxEmails(ctx, repo, s.outreach.FaxEmailDomain)
		if err != nil {
			s.logger.Error("导入后补齐传真邮箱失败", zap.Error(err))
			return err
		}
		result.FaxEmailsFixed = fixed
		return nil
	}
	if s.cfg.Transactional {
		err = runInTx(ctx, s.repo, s.logger, process)
	} else {
		err = process(s.repo)
	}
	if err != nil {
		return nil, err
	}

	run, err := s.recordRun(ctx, fileName, importedBy, result)
	if err != nil {
		return nil, err
	}
	result.RunID = run.ID

	s.logger.Info("表格导入完成",
		zap.String("file", fileName),
		zap.Int("practices", result.PracticesImported),
		zap.Int("providers", result.ProvidersImported),
		zap.Int("fax_numbers", result.FaxNumbersFound),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("row_errors", len(result.Errors)),
	)
	return result, nil
}

// importRows 逐行导入（第 1 行为表头，数据从第 2 行开始）
func (s *importService) importRows(ctx context.Context, repo *repository.Repository, rows [][]string, result *dto.ImportResult) error {
	loc := s.now().Location()
	cols := result.ColumnMap
	currentPractice := ""

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		get := func(field string) string {
			idx := cols[field]
			if idx < 0 || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := get(FieldPracticeName)
		address := get(FieldAddress)
		contactInfo := get(FieldContactInfo)
		providersText := get(FieldProviders)

		if name == "" && address == "" && contactInfo == "" && providersText == "" {
			result.SkippedRows++
			continue
		}

		// 无名称的行视为上一诊所的分部
		switch {
		case name == "" && currentPractice != "":
			name = currentPractice + branchSuffix
		case name != "":
			currentPractice = name
		default:
			result.SkippedRows++
			continue
		}
		result.RowsProcessed++

		fax := ParseFax(contactInfo)
		practice := &model.Practice{
			Name:             name,
			Address:          address,
			ZipCode:          ExtractZip(address),
			LocationCategory: s.classifier.Classify(address),
			Phone:            ParsePhone(contactInfo),
			Fax:              fax,
			Notes:            importNotes(get(FieldDetails), cellText(get(FieldNextFollowup), loc)),
			Status:           model.StatusActive,
		}
		if fax != "" {
			practice.FaxEmail = ToVonageEmail(fax, s.outreach.FaxEmailDomain)
			result.FaxNumbersFound++
		}

		if err := repo.Practice.Create(ctx, practice); err != nil {
			s.logger.Error("导入诊所失败", zap.Int("row", rowNum), zap.Error(err))
			return err
		}
		result.PracticesImported++

		if raw := get(FieldLastContact); raw != "" {
			entry := &model.ContactLog{
				PracticeID:  practice.ID,
				ContactType: model.ContactOther,
				TeamMember:  s.outreach.DefaultTeamMember,
				Notes:       importContactNote,
			}
			if t, ok := cellDate(raw, loc); ok {
				entry.ContactDate = &t
			} else {
				result.Errors = append(result.Errors, dto.ImportRowError{
					Row:    rowNum,
					Reason: fmt.Sprintf("last contact %q is not a date", raw),
				})
			}
			if err := appendContact(ctx, repo, entry); err != nil {
				s.logger.Error("导入联系记录失败", zap.Int("row", rowNum), zap.Error(err))
				return err
			}
		}

		names := ParseProviderNames(providersText)
		if len(names) == 0 {
			continue
		}
		providers := make([]model.Provider, 0, len(names))
		for _, n := range names {
			providers = append(providers, model.Provider{
				Name:       n,
				PracticeID: &practice.ID,
				Status:     model.StatusActive,
			})
		}
		if err := repo.Provider.BatchCreate(ctx, providers); err != nil {
			s.logger.Error("导入医生失败", zap.Int("row", rowNum), zap.Error(err))
			return err
		}
		result.ProvidersImported += len(providers)
	}
	return nil
}

// importNotes 合并详情与下次跟进
func importNotes(details, nextFollowup string) string {
	var parts []string
	if details != "" {
		parts = append(parts, details)
	}
	if nextFollowup != "" {
		parts = append(parts, "Next follow-up: "+nextFollowup)
	}
	return strings.Join(parts, "\n")
}

func (s *importService) recordRun(ctx context.Context, fileName, importedBy string, result *dto.ImportResult) (*model.ImportRun, error) {
	columnMap, err := json.Marshal(result.ColumnMap)
	if err != nil {
		return nil, err
	}
	rowErrors, err := json.Marshal(result.Errors)
	if err != nil {
		return nil, err
	}

	run := &model.ImportRun{
		FileName:          path.Base(fileName),
		BackupKey:         result.BackupKey,
		ImportedBy:        importedBy,
		PracticesImported: result.PracticesImported,
		ProvidersImported: result.ProvidersImported,
		FaxNumbersFound:   result.FaxNumbersFound,
		RowsProcessed:     result.RowsProcessed,
		SkippedRows:       result.SkippedRows,
		FaxEmailsFixed:    result.FaxEmailsFixed,
		ColumnMap:         datatypes.JSON(columnMap),
		Errors:            datatypes.JSON(rowErrors),
		CreatedAt:         s.now(),
	}
	if err := s.repo.ImportRun.Create(ctx, run); err != nil {
		s.logger.Error("记录导入批次失败", zap.Error(err))
		return nil, err
	}
	return run, nil
}

// ────────────────────── ImportRuns ──────────────────────

func (s *importService) ListRuns(ctx context.Context, limit int) ([]model.ImportRun, error) {
	runs, err := s.repo.ImportRun.List(ctx, limit)
	if err != nil {
		s.logger.Error("查询导入记录失败", zap.Error(err))
		return nil, err
	}
	return runs, nil
}

func (s *importService) GetRun(ctx context.Context, id uint64) (*model.ImportRun, error) {
	run, err := s.repo.ImportRun.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImportRunNotFound
		}
		s.logger.Error("查询导入记录失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return run, nil
}

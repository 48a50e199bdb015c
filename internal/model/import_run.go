package model

import (
	"time"

	"gorm.io/datatypes"
)

// ImportRun 表格导入批次记录 — 对应 import_runs
type ImportRun struct {
	ID                uint64         `gorm:"primaryKey;autoIncrement"           json:"id"`
	FileName          string         `gorm:"type:varchar(255)"                  json:"file_name"`
	BackupKey         string         `gorm:"type:varchar(512)"                  json:"backup_key,omitempty"`
	ImportedBy        string         `gorm:"type:varchar(100)"                  json:"imported_by"`
	PracticesImported int            `gorm:"not null;default:0"                 json:"practices_imported"`
	ProvidersImported int            `gorm:"not null;default:0"                 json:"providers_imported"`
	FaxNumbersFound   int            `gorm:"not null;default:0"                 json:"fax_numbers_found"`
	RowsProcessed     int            `gorm:"not null;default:0"                 json:"rows_processed"`
	SkippedRows       int            `gorm:"not null;default:0"                 json:"skipped_rows"`
	FaxEmailsFixed    int            `gorm:"not null;default:0"                 json:"fax_emails_fixed"`
	ColumnMap         datatypes.JSON `gorm:"type:jsonb"                         json:"column_map"`
	Errors            datatypes.JSON `gorm:"type:jsonb"                         json:"errors"`
	CreatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (ImportRun) TableName() string { return "import_runs" }

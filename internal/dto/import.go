package dto

// ── 表格导入 DTO ──

// ImportRowError 导入行级问题
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult 导入统计
type ImportResult struct {
	RunID             uint64           `json:"run_id,omitempty"`
	BackupKey         string           `json:"backup_key,omitempty"`
	PracticesImported int              `json:"practices_imported"`
	ProvidersImported int              `json:"providers_imported"`
	FaxNumbersFound   int              `json:"fax_numbers_found"`
	RowsProcessed     int              `json:"rows_processed"`
	SkippedRows       int              `json:"skipped_rows"`
	FaxEmailsFixed    int              `json:"fax_emails_fixed"`
	ColumnMap         map[string]int   `json:"column_map"` // 字段 → 列号（从 0 开始）
	Errors            []ImportRowError `json:"errors"`
}

package models

// ImportRowError 单行导入失败信息
// Line 为源文件中的1-based行号（含表头行）
type ImportRowError struct {
	Line      int    `json:"line"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ImportReport 批量导入结果汇总
type ImportReport struct {
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	FailureCount int              `json:"failureCount"`
	Errors       []ImportRowError `json:"errors"`
}

// CustomerImportRow 客户导入行（解析后）
type CustomerImportRow struct {
	Line    int
	Name    string
	Mobile1 string
	Mobile2 *string
	Mobile3 *string
	Street  string
	City    string
	State   string
	ZipCode string
}

// ReminderImportRow 提醒导入行（解析后）
type ReminderImportRow struct {
	Line           int
	CustomerMobile string
	ReminderText   string
	ReminderDate   string // YYYY-MM-DD
}

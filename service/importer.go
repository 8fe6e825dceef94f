package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"
	"github.com/modidiviyansh/customer-call-tracker-sub000/repository"
	"github.com/modidiviyansh/customer-call-tracker-sub000/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// CustomerImportGroupSize 客户导入每组提交条数
	CustomerImportGroupSize = 25
	// ReminderImportGroupSize 提醒导入每组提交条数
	ReminderImportGroupSize = 50
	// ImportGroupPause 组间停顿，避免打爆远端
	ImportGroupPause = 150 * time.Millisecond
)

// ImportStore 导入流程需要的存储操作
type ImportStore interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	InsertCustomer(ctx context.Context, customer *models.Customer) error
	FindCustomersByMobile(ctx context.Context, mobile string) ([]models.Customer, error)
	InsertCallRecord(ctx context.Context, record *models.CallRecord) error
}

// Importer 批量导入器
// 每组内的行并发提交并统一等待，组间固定停顿；任何行级失败都不会中断其余行，
// 也不会自动重试，可重试与否只用于最终报告的分类
type Importer struct {
	store      ImportStore
	agentPin   string
	groupPause time.Duration
	classify   func(error) bool
}

// NewImporter 创建导入器
func NewImporter(store ImportStore, agentPin string) *Importer {
	return &Importer{
		store:      store,
		agentPin:   agentPin,
		groupPause: ImportGroupPause,
		classify:   repository.IsRetryableError,
	}
}

// SetGroupPause 调整组间停顿（测试用）
func (im *Importer) SetGroupPause(d time.Duration) {
	im.groupPause = d
}

// requiredCustomerColumns 客户文件必须出现的表头列
var requiredCustomerColumns = []string{"name", "mobile1"}

// customerColumns 客户模板全部列
var customerColumns = []string{"name", "mobile1", "mobile2", "mobile3", "street", "city", "state", "zipcode"}

// requiredReminderColumns 提醒文件必须出现的表头列
var requiredReminderColumns = []string{"customer_mobile", "reminder_text", "reminder_date"}

// parseHeader 解析表头，大小写不敏感，多余列容忍，缺少必需列整个文件拒绝
func parseHeader(header []string, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, utils.CreateBadRequestError(
			fmt.Sprintf("文件表头缺少必需列: %s", strings.Join(missing, ", ")))
	}

	return index, nil
}

// field 按列名取行字段，列不存在或行太短时返回空串
func field(row []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ImportCustomers 导入客户CSV
// 表头校验失败时不处理任何行；行级校验失败收集行号后继续处理其他行
func (im *Importer) ImportCustomers(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, utils.CreateBadRequestError("无法读取文件表头: " + err.Error())
	}
	index, err := parseHeader(header, requiredCustomerColumns)
	if err != nil {
		return nil, err
	}

	// 现有客户的组合键，用于查重
	existing, err := im.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取现有客户失败: %w", err)
	}
	seenKeys := make(map[string]string) // 组合键 -> 客户名称
	for _, c := range existing {
		for _, m := range c.Mobiles() {
			seenKeys[utils.CompositeKey(c.Name, m)] = c.Name
		}
	}

	report := &models.ImportReport{}
	var validRows []models.CustomerImportRow

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			report.TotalRows++
			report.Errors = append(report.Errors, models.ImportRowError{
				Line: line, Message: "行解析失败: " + err.Error(),
			})
			continue
		}
		// 跳过完全空行
		if isBlankRow(row) {
			continue
		}

		report.TotalRows++
		parsed, rowErr := parseCustomerRow(row, index, line, seenKeys)
		if rowErr != nil {
			report.Errors = append(report.Errors, *rowErr)
			continue
		}

		// 本行的组合键立即登记，同文件内的重复也会被拒绝
		for _, m := range customerRowMobiles(parsed) {
			seenKeys[utils.CompositeKey(parsed.Name, m)] = parsed.Name
		}
		validRows = append(validRows, parsed)
	}

	// 分组并发提交
	for start := 0; start < len(validRows); start += CustomerImportGroupSize {
		end := start + CustomerImportGroupSize
		if end > len(validRows) {
			end = len(validRows)
		}
		group := validRows[start:end]

		groupErrors := make([]*models.ImportRowError, len(group))
		var wg sync.WaitGroup
		for i := range group {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				row := group[i]
				now := time.Now()
				customer := &models.Customer{
					ID:        primitive.NewObjectID(),
					Name:      row.Name,
					Mobile1:   row.Mobile1,
					Mobile2:   row.Mobile2,
					Mobile3:   row.Mobile3,
					Street:    row.Street,
					City:      row.City,
					State:     row.State,
					ZipCode:   row.ZipCode,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := im.store.InsertCustomer(ctx, customer); err != nil {
					groupErrors[i] = &models.ImportRowError{
						Line:      row.Line,
						Message:   "写入失败: " + err.Error(),
						Retryable: im.classify(err),
					}
				}
			}(i)
		}
		wg.Wait()

		for _, ge := range groupErrors {
			if ge != nil {
				report.Errors = append(report.Errors, *ge)
			} else {
				report.SuccessCount++
			}
		}

		if end < len(validRows) {
			time.Sleep(im.groupPause)
		}
	}

	report.FailureCount = len(report.Errors)
	sortErrorsByLine(report)

	utils.LogInfo(map[string]interface{}{
		"total":   report.TotalRows,
		"success": report.SuccessCount,
		"failed":  report.FailureCount,
	}, "客户批量导入完成")

	return report, nil
}

// parseCustomerRow 解析并校验单行客户数据
func parseCustomerRow(row []string, index map[string]int, line int, seenKeys map[string]string) (models.CustomerImportRow, *models.ImportRowError) {
	var parsed models.CustomerImportRow
	parsed.Line = line
	parsed.Name = field(row, index, "name")
	parsed.Street = field(row, index, "street")
	parsed.City = field(row, index, "city")
	parsed.State = field(row, index, "state")
	parsed.ZipCode = field(row, index, "zipcode")

	if parsed.Name == "" {
		return parsed, &models.ImportRowError{Line: line, Message: "客户名称不能为空"}
	}

	mobiles := make([]string, 0, 3)
	for _, col := range []string{"mobile1", "mobile2", "mobile3"} {
		raw := field(row, index, col)
		if raw == "" {
			continue
		}
		if !utils.IsValidMobile(raw) {
			return parsed, &models.ImportRowError{
				Line: line, Message: fmt.Sprintf("手机号格式无效: %s (%s)", raw, col),
			}
		}
		mobiles = append(mobiles, utils.NormalizeMobile(raw))
	}

	if len(mobiles) == 0 {
		return parsed, &models.ImportRowError{Line: line, Message: "至少需要一个手机号"}
	}

	// 同一行内号码重复
	unique := make(map[string]bool, len(mobiles))
	for _, m := range mobiles {
		if unique[m] {
			return parsed, &models.ImportRowError{
				Line: line, Message: fmt.Sprintf("同一客户的手机号重复: %s", m),
			}
		}
		unique[m] = true
	}

	// 与现有客户查重（组合键）
	for _, m := range mobiles {
		if owner, dup := seenKeys[utils.CompositeKey(parsed.Name, m)]; dup {
			return parsed, &models.ImportRowError{
				Line:    line,
				Message: fmt.Sprintf("疑似重复客户: %s / %s 与已有客户 %q 冲突", parsed.Name, m, owner),
			}
		}
	}

	parsed.Mobile1 = mobiles[0]
	if len(mobiles) > 1 {
		parsed.Mobile2 = &mobiles[1]
	}
	if len(mobiles) > 2 {
		parsed.Mobile3 = &mobiles[2]
	}

	return parsed, nil
}

func customerRowMobiles(row models.CustomerImportRow) []string {
	mobiles := []string{row.Mobile1}
	if row.Mobile2 != nil {
		mobiles = append(mobiles, *row.Mobile2)
	}
	if row.Mobile3 != nil {
		mobiles = append(mobiles, *row.Mobile3)
	}
	return mobiles
}

// ImportReminders 导入提醒CSV
// 每行按手机号定位客户，匹配不到或匹配到多个客户都算该行失败
func (im *Importer) ImportReminders(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, utils.CreateBadRequestError("无法读取文件表头: " + err.Error())
	}
	index, err := parseHeader(header, requiredReminderColumns)
	if err != nil {
		return nil, err
	}

	report := &models.ImportReport{}
	var validRows []models.ReminderImportRow

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			report.TotalRows++
			report.Errors = append(report.Errors, models.ImportRowError{
				Line: line, Message: "行解析失败: " + err.Error(),
			})
			continue
		}
		if isBlankRow(row) {
			continue
		}

		report.TotalRows++
		parsed := models.ReminderImportRow{
			Line:           line,
			CustomerMobile: field(row, index, "customer_mobile"),
			ReminderText:   field(row, index, "reminder_text"),
			ReminderDate:   field(row, index, "reminder_date"),
		}

		if rowErr := validateReminderRow(&parsed); rowErr != nil {
			report.Errors = append(report.Errors, *rowErr)
			continue
		}
		validRows = append(validRows, parsed)
	}

	for start := 0; start < len(validRows); start += ReminderImportGroupSize {
		end := start + ReminderImportGroupSize
		if end > len(validRows) {
			end = len(validRows)
		}
		group := validRows[start:end]

		groupErrors := make([]*models.ImportRowError, len(group))
		var wg sync.WaitGroup
		for i := range group {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				groupErrors[i] = im.commitReminderRow(ctx, group[i])
			}(i)
		}
		wg.Wait()

		for _, ge := range groupErrors {
			if ge != nil {
				report.Errors = append(report.Errors, *ge)
			} else {
				report.SuccessCount++
			}
		}

		if end < len(validRows) {
			time.Sleep(im.groupPause)
		}
	}

	report.FailureCount = len(report.Errors)
	sortErrorsByLine(report)

	utils.LogInfo(map[string]interface{}{
		"total":   report.TotalRows,
		"success": report.SuccessCount,
		"failed":  report.FailureCount,
	}, "提醒批量导入完成")

	return report, nil
}

// validateReminderRow 校验提醒行
func validateReminderRow(row *models.ReminderImportRow) *models.ImportRowError {
	if row.CustomerMobile == "" {
		return &models.ImportRowError{Line: row.Line, Message: "customer_mobile 不能为空"}
	}
	if !utils.IsValidMobile(row.CustomerMobile) {
		return &models.ImportRowError{
			Line: row.Line, Message: fmt.Sprintf("手机号格式无效: %s", row.CustomerMobile),
		}
	}
	if row.ReminderText == "" {
		return &models.ImportRowError{Line: row.Line, Message: "reminder_text 不能为空"}
	}
	if _, err := time.ParseInLocation("2006-01-02", row.ReminderDate, time.Local); err != nil {
		return &models.ImportRowError{
			Line: row.Line, Message: fmt.Sprintf("日期格式无效(要求YYYY-MM-DD): %s", row.ReminderDate),
		}
	}
	return nil
}

// commitReminderRow 提交单条提醒，返回nil表示成功
func (im *Importer) commitReminderRow(ctx context.Context, row models.ReminderImportRow) *models.ImportRowError {
	mobile := utils.NormalizeMobile(row.CustomerMobile)
	matches, err := im.store.FindCustomersByMobile(ctx, mobile)
	if err != nil {
		return &models.ImportRowError{
			Line:      row.Line,
			Message:   "查询客户失败: " + err.Error(),
			Retryable: im.classify(err),
		}
	}
	if len(matches) == 0 {
		return &models.ImportRowError{
			Line: row.Line, Message: fmt.Sprintf("未找到手机号为 %s 的客户", mobile),
		}
	}
	if len(matches) > 1 {
		return &models.ImportRowError{
			Line:    row.Line,
			Message: fmt.Sprintf("手机号 %s 匹配到 %d 个客户，无法确定归属", mobile, len(matches)),
		}
	}

	nextCall, _ := time.ParseInLocation("2006-01-02", row.ReminderDate, time.Local)
	now := time.Now()
	record := &models.CallRecord{
		ID:           primitive.NewObjectID(),
		CustomerId:   matches[0].ID.Hex(),
		AgentPin:     im.agentPin,
		CallDate:     now,
		NextCallDate: &nextCall,
		Disposition:  models.DispositionFollowUp,
		Remarks:      row.ReminderText,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := im.store.InsertCallRecord(ctx, record); err != nil {
		return &models.ImportRowError{
			Line:      row.Line,
			Message:   "写入失败: " + err.Error(),
			Retryable: im.classify(err),
		}
	}
	return nil
}

// isBlankRow 整行为空
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sortErrorsByLine 报告内错误按行号排序，方便对照源文件
func sortErrorsByLine(report *models.ImportReport) {
	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].Line < report.Errors[j].Line
	})
}

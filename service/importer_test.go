package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeImportStore 内存版导入存储
type fakeImportStore struct {
	mu                sync.Mutex
	existing          []models.Customer
	insertedCustomers []models.Customer
	insertedRecords   []models.CallRecord
	insertCustomerErr func(c *models.Customer) error
	listCalls         int
	insertCalls       int
}

func (s *fakeImportStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return s.existing, nil
}

func (s *fakeImportStore) InsertCustomer(ctx context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.insertCustomerErr != nil {
		if err := s.insertCustomerErr(customer); err != nil {
			return err
		}
	}
	s.insertedCustomers = append(s.insertedCustomers, *customer)
	return nil
}

func (s *fakeImportStore) FindCustomersByMobile(ctx context.Context, mobile string) ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []models.Customer
	for _, c := range s.existing {
		for _, m := range c.Mobiles() {
			if m == mobile {
				matches = append(matches, c)
				break
			}
		}
	}
	return matches, nil
}

func (s *fakeImportStore) InsertCallRecord(ctx context.Context, record *models.CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertedRecords = append(s.insertedRecords, *record)
	return nil
}

func newTestImporter(store ImportStore) *Importer {
	im := NewImporter(store, "1234")
	im.SetGroupPause(0)
	return im
}

func strPtr(s string) *string { return &s }

func TestImportCustomersMissingHeaderRejectsWholeFile(t *testing.T) {
	store := &fakeImportStore{}
	im := newTestImporter(store)

	csvData := "name,street\n张三,某街道\n"
	_, err := im.ImportCustomers(context.Background(), strings.NewReader(csvData))
	if err == nil {
		t.Fatal("缺少mobile1列应整个文件拒绝")
	}
	if !strings.Contains(err.Error(), "mobile1") {
		t.Fatalf("错误信息应指出缺少的列, 实际 %v", err)
	}
	if store.listCalls != 0 || store.insertCalls != 0 {
		t.Fatalf("表头校验失败不应访问存储, list=%d insert=%d", store.listCalls, store.insertCalls)
	}
}

func TestImportCustomersGroupedCommit(t *testing.T) {
	store := &fakeImportStore{}
	im := newTestImporter(store)

	var b strings.Builder
	b.WriteString("name,mobile1,city\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "客户%d,98765%05d,孟买\n", i, 10000+i)
	}

	report, err := im.ImportCustomers(context.Background(), strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	if report.TotalRows != 30 || report.SuccessCount != 30 || report.FailureCount != 0 {
		t.Fatalf("期望30行全部成功, 实际 total=%d success=%d failed=%d",
			report.TotalRows, report.SuccessCount, report.FailureCount)
	}
	if len(store.insertedCustomers) != 30 {
		t.Fatalf("期望写入30个客户, 实际 %d", len(store.insertedCustomers))
	}
}

func TestImportCustomersHeaderCaseInsensitive(t *testing.T) {
	store := &fakeImportStore{}
	im := newTestImporter(store)

	csvData := "Name,MOBILE1,City\n拉杰什,9876543210,德里\n"
	report, err := im.ImportCustomers(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("表头大小写不应影响解析: %v", err)
	}
	if report.SuccessCount != 1 {
		t.Fatalf("期望1行成功, 实际 %d", report.SuccessCount)
	}
	if got := store.insertedCustomers[0].City; got != "德里" {
		t.Fatalf("期望城市字段被识别, 实际 %q", got)
	}
}

func TestImportCustomersDuplicateAgainstExisting(t *testing.T) {
	store := &fakeImportStore{
		existing: []models.Customer{
			{ID: primitive.NewObjectID(), Name: "Asha Rao", Mobile1: "9876543210"},
		},
	}
	im := newTestImporter(store)

	csvData := "name,mobile1\nAsha Rao,+919876543210\n"
	report, err := im.ImportCustomers(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	if report.SuccessCount != 0 || report.FailureCount != 1 {
		t.Fatalf("期望与现有客户冲突而失败, 实际 success=%d failed=%d",
			report.SuccessCount, report.FailureCount)
	}
	e := report.Errors[0]
	if e.Line != 2 {
		t.Fatalf("期望行号2(表头为行1), 实际 %d", e.Line)
	}
	if !strings.Contains(e.Message, "Asha Rao") {
		t.Fatalf("错误信息应指出冲突的客户, 实际 %q", e.Message)
	}
	if e.Retryable {
		t.Fatal("重复客户不是可重试错误")
	}
}

func TestImportCustomersDuplicateWithinFile(t *testing.T) {
	store := &fakeImportStore{}
	im := newTestImporter(store)

	csvData := "name,mobile1\n普丽娅,9812345678\n普丽娅,9812345678\n"
	report, err := im.ImportCustomers(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	if report.SuccessCount != 1 || report.FailureCount != 1 {
		t.Fatalf("同文件内重复行应只成功一条, 实际 success=%d failed=%d",
			report.SuccessCount, report.FailureCount)
	}
	if report.Errors[0].Line != 3 {
		t.Fatalf("期望第3行被拒, 实际 %d", report.Errors[0].Line)
	}
}

func TestImportCustomersRowValidation(t *testing.T) {
	store := &fakeImportStore{}
	im := newTestImporter(store)

	csvData := "name,mobile1,mobile2\n" +
		",9876543210,\n" + // 行2: 缺名称
		"桑吉夫,5876543210,\n" + // 行3: 号码不以6-9开头
		"米拉,9876543210,9876543210\n" + // 行4: 同行号码重复
		"阿尼尔,9000000001,\n" // 行5: 有效

	report, err := im.ImportCustomers(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	if report.SuccessCount != 1 || report.FailureCount != 3 {
		t.Fatalf("期望1成功3失败, 实际 success=%d failed=%d", report.SuccessCount, report.FailureCount)
	}
	wantLines := []int{2, 3, 4}
	for i, want := range wantLines {
		if report.Errors[i].Line != want {
			t.Fatalf("错误%d期望行号%d, 实际 %d", i, want, report.Errors[i].Line)
		}
	}
}

func TestImportCustomersClassifiesFailures(t *testing.T) {
	store := &fakeImportStore{
		insertCustomerErr: func(c *models.Customer) error {
			switch c.Name {
			case "超时客户":
				return errors.New("connection timeout")
			case "冲突客户":
				return errors.New("duplicate key error")
			}
			return nil
		},
	}
	im := newTestImporter(store)

	csvData := "name,mobile1\n超时客户,9876500001\n冲突客户,9876500002\n正常客户,9876500003\n"
	report, err := im.ImportCustomers(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	if report.SuccessCount != 1 || report.FailureCount != 2 {
		t.Fatalf("期望1成功2失败, 实际 success=%d failed=%d", report.SuccessCount, report.FailureCount)
	}
	// 错误已按行号排序: 行2超时(可重试), 行3冲突(不可重试)
	if !report.Errors[0].Retryable {
		t.Fatal("超时错误应标记为可重试")
	}
	if report.Errors[1].Retryable {
		t.Fatal("重复键错误不应标记为可重试")
	}
}

func TestImportReminders(t *testing.T) {
	asha := models.Customer{ID: primitive.NewObjectID(), Name: "Asha Rao", Mobile1: "9876543210"}
	// 两个客户共用同一号码，制造归属不明
	shared1 := models.Customer{ID: primitive.NewObjectID(), Name: "客户甲", Mobile1: "9888800000"}
	shared2 := models.Customer{ID: primitive.NewObjectID(), Name: "客户乙", Mobile2: strPtr("9888800000")}

	store := &fakeImportStore{existing: []models.Customer{asha, shared1, shared2}}
	im := newTestImporter(store)

	csvData := "customer_mobile,reminder_text,reminder_date\n" +
		"9876543210,回访报价,2026-09-05\n" + // 行2: 成功
		"9111111111,无此客户,2026-09-05\n" + // 行3: 找不到客户
		"9888800000,归属不明,2026-09-05\n" + // 行4: 多个客户匹配
		"9876543210,日期错误,05-09-2026\n" // 行5: 日期格式无效

	report, err := im.ImportReminders(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	if report.TotalRows != 4 || report.SuccessCount != 1 || report.FailureCount != 3 {
		t.Fatalf("期望1成功3失败, 实际 total=%d success=%d failed=%d",
			report.TotalRows, report.SuccessCount, report.FailureCount)
	}

	if len(store.insertedRecords) != 1 {
		t.Fatalf("期望写入1条通话记录, 实际 %d", len(store.insertedRecords))
	}
	rec := store.insertedRecords[0]
	if rec.CustomerId != asha.ID.Hex() {
		t.Fatalf("提醒应挂到匹配的客户上, 实际 %s", rec.CustomerId)
	}
	if rec.Disposition != models.DispositionFollowUp {
		t.Fatalf("导入的提醒处置结果应为follow_up, 实际 %s", rec.Disposition)
	}
	if rec.Remarks != "回访报价" {
		t.Fatalf("提醒文本应落到备注, 实际 %q", rec.Remarks)
	}
	want := time.Date(2026, 9, 5, 0, 0, 0, 0, time.Local)
	if rec.NextCallDate == nil || !rec.NextCallDate.Equal(want) {
		t.Fatalf("期望回访日期 %v, 实际 %v", want, rec.NextCallDate)
	}

	wantLines := []int{3, 4, 5}
	for i, wantLine := range wantLines {
		if report.Errors[i].Line != wantLine {
			t.Fatalf("错误%d期望行号%d, 实际 %d", i, wantLine, report.Errors[i].Line)
		}
	}
}

func TestImportRemindersMissingHeader(t *testing.T) {
	store := &fakeImportStore{}
	im := newTestImporter(store)

	csvData := "customer_mobile,reminder_text\n9876543210,缺日期列\n"
	_, err := im.ImportReminders(context.Background(), strings.NewReader(csvData))
	if err == nil {
		t.Fatal("缺少reminder_date列应整个文件拒绝")
	}
	if len(store.insertedRecords) != 0 {
		t.Fatalf("表头校验失败不应写入任何记录, 实际 %d", len(store.insertedRecords))
	}
}

func TestImportCustomersSkipsBlankRows(t *testing.T) {
	store := &fakeImportStore{}
	im := newTestImporter(store)

	csvData := "name,mobile1\n卡维塔,9876512345\n,\n\n"
	report, err := im.ImportCustomers(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if report.TotalRows != 1 || report.SuccessCount != 1 {
		t.Fatalf("空行不应计入统计, 实际 total=%d success=%d", report.TotalRows, report.SuccessCount)
	}
}

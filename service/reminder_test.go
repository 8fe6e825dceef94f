package service

import (
	"testing"
	"time"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestBucketReminders(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 30, 0, 0, time.Local)
	day := func(offset int) *time.Time {
		// 刻意用非零时分，分桶只看日期部分
		d := time.Date(2026, 8, 30, 9, 15, 0, 0, time.Local).AddDate(0, 0, offset)
		return &d
	}

	records := []models.CallRecord{
		{CustomerId: "c1", Disposition: models.DispositionFollowUp, NextCallDate: day(-3)},
		{CustomerId: "c2", Disposition: models.DispositionNoAnswer, NextCallDate: day(0)},
		{CustomerId: "c3", Disposition: models.DispositionFollowUp, NextCallDate: day(1)},
		{CustomerId: "c4", Disposition: models.DispositionBusy, NextCallDate: day(7)},
		{CustomerId: "c5", Disposition: models.DispositionFollowUp, NextCallDate: day(8)}, // 超窗口，静默排除
		{CustomerId: "c6", Disposition: models.DispositionCompleted},                      // 无回访日期
	}

	buckets := BucketReminders(records, now)

	if len(buckets.Overdue) != 1 || buckets.Overdue[0].Record.CustomerId != "c1" {
		t.Fatalf("逾期桶不符: %+v", buckets.Overdue)
	}
	if len(buckets.Today) != 1 || buckets.Today[0].Record.CustomerId != "c2" {
		t.Fatalf("今天桶不符: %+v", buckets.Today)
	}
	if len(buckets.Upcoming) != 2 {
		t.Fatalf("即将到期桶期望2条(含第7天), 实际 %d", len(buckets.Upcoming))
	}
	for _, item := range buckets.Upcoming {
		if item.Record.CustomerId == "c5" {
			t.Fatal("超过7天窗口的回访不应出现在任何桶")
		}
	}
}

func TestBucketRemindersDispositionsFromResultSet(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	records := []models.CallRecord{
		{CustomerId: "c1", Disposition: models.DispositionCompleted},
		{CustomerId: "c2", Disposition: models.DispositionBusy},
		{CustomerId: "c3", Disposition: models.DispositionCompleted},
	}

	buckets := BucketReminders(records, now)

	// 去重并排序，不含未出现过的处置结果
	want := []models.Disposition{models.DispositionBusy, models.DispositionCompleted}
	if len(buckets.Dispositions) != len(want) {
		t.Fatalf("期望处置结果 %v, 实际 %v", want, buckets.Dispositions)
	}
	for i := range want {
		if buckets.Dispositions[i] != want[i] {
			t.Fatalf("期望处置结果 %v, 实际 %v", want, buckets.Dispositions)
		}
	}
}

func TestDedupLatestPerCustomer(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.Local)

	records := []models.CallRecord{
		{CustomerId: "c1", Remarks: "旧记录", UpdatedAt: base},
		{CustomerId: "c1", Remarks: "新记录", UpdatedAt: base.Add(48 * time.Hour)},
		{CustomerId: "c2", Remarks: "唯一记录", UpdatedAt: base},
	}

	result := DedupLatestPerCustomer(records)
	if len(result) != 2 {
		t.Fatalf("期望每个客户1条, 实际 %d", len(result))
	}
	if result[0].Remarks != "新记录" {
		t.Fatalf("应保留更新时间最新的记录, 实际 %q", result[0].Remarks)
	}
}

func TestDedupFallsBackToCallDate(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.Local)

	// UpdatedAt缺失时按CallDate比较
	records := []models.CallRecord{
		{CustomerId: "c1", Remarks: "早", CallDate: base},
		{CustomerId: "c1", Remarks: "晚", CallDate: base.Add(24 * time.Hour)},
	}

	result := DedupLatestPerCustomer(records)
	if len(result) != 1 || result[0].Remarks != "晚" {
		t.Fatalf("期望按通话时间回退比较, 实际 %+v", result)
	}
}

func TestBucketRemindersUsesLatestRecordPerCustomer(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	// 同一客户先约了昨天，后改约明天，只有最新的生效
	records := []models.CallRecord{
		{CustomerId: "c1", NextCallDate: timePtr(yesterday), UpdatedAt: now.Add(-2 * time.Hour)},
		{CustomerId: "c1", NextCallDate: timePtr(tomorrow), UpdatedAt: now.Add(-1 * time.Hour)},
	}

	buckets := BucketReminders(records, now)
	if len(buckets.Overdue) != 0 {
		t.Fatalf("旧回访日期不应产生逾期提醒: %+v", buckets.Overdue)
	}
	if len(buckets.Upcoming) != 1 {
		t.Fatalf("期望1条即将到期提醒, 实际 %d", len(buckets.Upcoming))
	}
}

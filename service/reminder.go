package service

import (
	"context"
	"sort"
	"time"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"
	"github.com/modidiviyansh/customer-call-tracker-sub000/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpcomingWindowDays "即将到期"桶的天数窗口
const UpcomingWindowDays = 7

// dayOf 截断到当天零点（本地时区）
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// effectiveUpdateTime 记录的有效更新时间，UpdatedAt缺失时回退到CallDate
func effectiveUpdateTime(r *models.CallRecord) time.Time {
	if r.UpdatedAt.IsZero() {
		return r.CallDate
	}
	return r.UpdatedAt
}

// DedupLatestPerCustomer 每个客户只保留最近一次处置的记录
func DedupLatestPerCustomer(records []models.CallRecord) []models.CallRecord {
	latest := make(map[string]models.CallRecord)
	order := make([]string, 0, len(records))

	for _, r := range records {
		prev, seen := latest[r.CustomerId]
		if !seen {
			order = append(order, r.CustomerId)
			latest[r.CustomerId] = r
			continue
		}
		if effectiveUpdateTime(&r).After(effectiveUpdateTime(&prev)) {
			latest[r.CustomerId] = r
		}
	}

	result := make([]models.CallRecord, 0, len(order))
	for _, id := range order {
		result = append(result, latest[id])
	}
	return result
}

// BucketReminders 把带回访日期的通话记录分到逾期/今天/即将到期三个桶
// 超过7天窗口的回访被静默排除，不出现在任何桶里
func BucketReminders(records []models.CallRecord, now time.Time) models.ReminderBuckets {
	buckets := models.ReminderBuckets{
		Overdue:  []models.ReminderItem{},
		Today:    []models.ReminderItem{},
		Upcoming: []models.ReminderItem{},
	}

	// 可用处置结果从结果集动态收集，不用固定清单
	dispositionSet := make(map[models.Disposition]bool)
	for _, r := range records {
		dispositionSet[r.Disposition] = true
	}
	for d := range dispositionSet {
		buckets.Dispositions = append(buckets.Dispositions, d)
	}
	sort.Slice(buckets.Dispositions, func(i, j int) bool {
		return buckets.Dispositions[i] < buckets.Dispositions[j]
	})

	today := dayOf(now)
	horizon := today.AddDate(0, 0, UpcomingWindowDays)

	for _, r := range DedupLatestPerCustomer(records) {
		if r.NextCallDate == nil {
			continue
		}
		due := dayOf(*r.NextCallDate)
		item := models.ReminderItem{Record: r}

		switch {
		case due.Before(today):
			buckets.Overdue = append(buckets.Overdue, item)
		case due.Equal(today):
			buckets.Today = append(buckets.Today, item)
		case !due.After(horizon):
			buckets.Upcoming = append(buckets.Upcoming, item)
		}
	}

	return buckets
}

// FetchReminderBuckets 拉取指定坐席的提醒并分桶
func FetchReminderBuckets(ctx context.Context, agentPin string) (*models.ReminderBuckets, error) {
	collection := repository.Collection(repository.CallRecordsCollection)

	filter := bson.M{
		"agentPin":     agentPin,
		"nextCallDate": bson.M{"$ne": nil},
	}
	opts := options.Find().SetSort(bson.M{"nextCallDate": 1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.CallRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	buckets := BucketReminders(records, time.Now())
	attachCustomers(ctx, &buckets)

	return &buckets, nil
}

// attachCustomers 给提醒条目补上客户信息，查不到的保持为空
func attachCustomers(ctx context.Context, buckets *models.ReminderBuckets) {
	ids := make([]primitive.ObjectID, 0)
	collect := func(items []models.ReminderItem) {
		for _, item := range items {
			if oid, err := primitive.ObjectIDFromHex(item.Record.CustomerId); err == nil {
				ids = append(ids, oid)
			}
		}
	}
	collect(buckets.Overdue)
	collect(buckets.Today)
	collect(buckets.Upcoming)

	if len(ids) == 0 {
		return
	}

	cursor, err := repository.Collection(repository.CustomersCollection).
		Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return
	}

	byID := make(map[string]*models.Customer, len(customers))
	for i := range customers {
		byID[customers[i].ID.Hex()] = &customers[i]
	}

	fill := func(items []models.ReminderItem) {
		for i := range items {
			items[i].Customer = byID[items[i].Record.CustomerId]
		}
	}
	fill(buckets.Overdue)
	fill(buckets.Today)
	fill(buckets.Upcoming)
}

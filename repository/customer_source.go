package repository

import (
	"context"
	"regexp"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCustomerSource 基于MongoDB的客户分页数据源
// 过滤、计数、排序全部由数据库完成
type MongoCustomerSource struct{}

// NewMongoCustomerSource 创建数据源
func NewMongoCustomerSource() *MongoCustomerSource {
	return &MongoCustomerSource{}
}

// CustomerSearchFilter 构建客户关键字过滤条件
// 关键字同时匹配客户名称和三个手机号槽位（不区分大小写）
func CustomerSearchFilter(keyword string) bson.M {
	filter := bson.M{}
	if keyword != "" {
		pattern := regexp.QuoteMeta(keyword)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"mobile1": bson.M{"$regex": pattern, "$options": "i"}},
			{"mobile2": bson.M{"$regex": pattern, "$options": "i"}},
			{"mobile3": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return filter
}

// FetchPage 拉取一页客户，返回精确总数
func (s *MongoCustomerSource) FetchPage(ctx context.Context, keyword string, page, pageSize int) ([]models.Customer, int64, error) {
	collection := Collection(CustomersCollection)
	filter := CustomerSearchFilter(keyword)

	totalCount, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"createdat": -1})
	findOptions.SetSkip(int64((page - 1) * pageSize))
	findOptions.SetLimit(int64(pageSize))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, 0, err
	}

	return customers, totalCount, nil
}

package repository

import (
	"context"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
)

// MongoImportStore 批量导入用的存储实现
type MongoImportStore struct{}

// NewMongoImportStore 创建导入存储
func NewMongoImportStore() *MongoImportStore {
	return &MongoImportStore{}
}

// ListCustomers 拉取全部客户（导入查重用）
func (s *MongoImportStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	cursor, err := Collection(CustomersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// InsertCustomer 写入单个客户
func (s *MongoImportStore) InsertCustomer(ctx context.Context, customer *models.Customer) error {
	_, err := Collection(CustomersCollection).InsertOne(ctx, customer)
	return err
}

// FindCustomersByMobile 按手机号查客户，三个号码槽位都参与匹配
func (s *MongoImportStore) FindCustomersByMobile(ctx context.Context, mobile string) ([]models.Customer, error) {
	filter := bson.M{"$or": []bson.M{
		{"mobile1": mobile},
		{"mobile2": mobile},
		{"mobile3": mobile},
	}}

	cursor, err := Collection(CustomersCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// InsertCallRecord 写入单条通话记录
func (s *MongoImportStore) InsertCallRecord(ctx context.Context, record *models.CallRecord) error {
	_, err := Collection(CallRecordsCollection).InsertOne(ctx, record)
	return err
}

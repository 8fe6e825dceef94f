package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CallRecord 通话记录
// 只能通过处置流程或提醒导入创建，UI侧不会删除
type CallRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	CustomerId      string             `bson:"customerId" json:"customerId"`
	AgentPin        string             `bson:"agentPin" json:"agentPin"`
	CallDate        time.Time          `bson:"callDate" json:"callDate"`
	NextCallDate    *time.Time         `bson:"nextCallDate,omitempty" json:"nextCallDate,omitempty"`
	Disposition     Disposition        `bson:"disposition" json:"disposition"`
	Remarks         string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	DurationSeconds int                `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	OutcomeScore    int                `bson:"outcomeScore,omitempty" json:"outcomeScore,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateCallRecordInput 创建通话记录的输入数据
// durationMinutes 以分钟提交，存储时换算为秒
type CreateCallRecordInput struct {
	CustomerId      string      `json:"customerId" binding:"required"`
	Disposition     Disposition `json:"disposition" binding:"required"`
	Remarks         string      `json:"remarks"`
	NextCallDate    string      `json:"nextCallDate"` // YYYY-MM-DD，可选
	DurationMinutes float64     `json:"durationMinutes"`
	OutcomeScore    int         `json:"outcomeScore"`
}

// UpdateCallRecordInput 更新通话记录的输入数据
type UpdateCallRecordInput struct {
	Disposition  *Disposition `json:"disposition,omitempty"`
	Remarks      *string      `json:"remarks,omitempty"`
	NextCallDate *string      `json:"nextCallDate,omitempty"`
	OutcomeScore *int         `json:"outcomeScore,omitempty"`
}

// ReminderItem 提醒条目（派生数据，不落库）
type ReminderItem struct {
	Record   CallRecord `json:"record"`
	Customer *Customer  `json:"customer,omitempty"`
}

// ReminderBuckets 按日期分桶后的提醒集合
type ReminderBuckets struct {
	Overdue  []ReminderItem `json:"overdue"`
	Today    []ReminderItem `json:"today"`
	Upcoming []ReminderItem `json:"upcoming"`
	// 当前结果集中实际出现的处置结果，用于前端筛选
	Dispositions []Disposition `json:"dispositions"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer 客户模型
// mobile2/mobile3 使用指针，区分"未填写"和空字符串
type Customer struct {
	ID      primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name    string             `json:"name" bson:"name"`
	Mobile1 string             `json:"mobile1" bson:"mobile1"`
	Mobile2 *string            `json:"mobile2,omitempty" bson:"mobile2,omitempty"`
	Mobile3 *string            `json:"mobile3,omitempty" bson:"mobile3,omitempty"`

	// 地址信息
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipcode,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdat"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedat"`
}

// Mobiles 返回客户所有已填写的手机号（主号码在前）
func (c *Customer) Mobiles() []string {
	mobiles := []string{c.Mobile1}
	if c.Mobile2 != nil && *c.Mobile2 != "" {
		mobiles = append(mobiles, *c.Mobile2)
	}
	if c.Mobile3 != nil && *c.Mobile3 != "" {
		mobiles = append(mobiles, *c.Mobile3)
	}
	return mobiles
}

// CustomerCreateRequest 创建客户请求
type CustomerCreateRequest struct {
	Name    string  `json:"name"`
	Mobile1 string  `json:"mobile1"`
	Mobile2 *string `json:"mobile2,omitempty"`
	Mobile3 *string `json:"mobile3,omitempty"`
	Street  string  `json:"street"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	ZipCode string  `json:"zipCode"`
}

// CustomerUpdateRequest 更新客户请求
// 指针字段未出现时表示不修改
type CustomerUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Mobile1 *string `json:"mobile1,omitempty"`
	Mobile2 *string `json:"mobile2,omitempty"`
	Mobile3 *string `json:"mobile3,omitempty"`
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	ZipCode *string `json:"zipCode,omitempty"`
}

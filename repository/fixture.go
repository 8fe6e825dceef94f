package repository

import (
	"context"
	"strings"
	"time"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FixtureCustomerSource 内置演示数据源
// 远端不可用且启用了本地降级时使用，分页只是对固定数组做切片
type FixtureCustomerSource struct {
	customers []models.Customer
}

// NewFixtureCustomerSource 创建演示数据源
func NewFixtureCustomerSource() *FixtureCustomerSource {
	return &FixtureCustomerSource{customers: fixtureCustomers()}
}

// FetchPage 客户端切片分页
func (s *FixtureCustomerSource) FetchPage(_ context.Context, keyword string, page, pageSize int) ([]models.Customer, int64, error) {
	filtered := s.customers
	if keyword != "" {
		kw := strings.ToLower(keyword)
		filtered = nil
		for _, c := range s.customers {
			if customerMatches(&c, kw) {
				filtered = append(filtered, c)
			}
		}
	}

	total := int64(len(filtered))
	start := (page - 1) * pageSize
	if start >= len(filtered) {
		return []models.Customer{}, total, nil
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], total, nil
}

func customerMatches(c *models.Customer, lowerKeyword string) bool {
	if strings.Contains(strings.ToLower(c.Name), lowerKeyword) {
		return true
	}
	for _, m := range c.Mobiles() {
		if strings.Contains(m, lowerKeyword) {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }

// fixtureCustomers 演示客户数据
func fixtureCustomers() []models.Customer {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)
	rows := []struct {
		name    string
		mobile1 string
		mobile2 *string
		city    string
		state   string
	}{
		{"Asha Rao", "9876543210", nil, "Hyderabad", "Telangana"},
		{"Vikram Singh", "9812345670", strPtr("8123456789"), "Jaipur", "Rajasthan"},
		{"Meena Kumari", "7012345678", nil, "Kochi", "Kerala"},
		{"Rahul Sharma", "9988776655", nil, "Delhi", "Delhi"},
		{"Priya Patel", "8899001122", strPtr("6789012345"), "Ahmedabad", "Gujarat"},
		{"Suresh Iyer", "9123456780", nil, "Chennai", "Tamil Nadu"},
		{"Kavita Joshi", "7890123456", nil, "Pune", "Maharashtra"},
		{"Arjun Nair", "6543210987", nil, "Bengaluru", "Karnataka"},
	}

	customers := make([]models.Customer, 0, len(rows))
	for i, r := range rows {
		created := base.Add(-time.Duration(i) * 24 * time.Hour)
		customers = append(customers, models.Customer{
			ID:        primitive.NewObjectID(),
			Name:      r.name,
			Mobile1:   r.mobile1,
			Mobile2:   r.mobile2,
			City:      r.city,
			State:     r.state,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return customers
}

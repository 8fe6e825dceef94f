package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/modidiviyansh/customer-call-tracker-sub000/config"
	"github.com/modidiviyansh/customer-call-tracker-sub000/models"
	"github.com/modidiviyansh/customer-call-tracker-sub000/repository"
	"github.com/modidiviyansh/customer-call-tracker-sub000/utils"
)

var cfg *config.Config

// Init 注入应用配置
func Init(c *config.Config) {
	cfg = c
}

// GetCustomerList 获取客户列表
// 过滤、计数、排序全部由数据库完成；远端失败且启用本地降级时
// 静默切换到内置演示数据
func GetCustomerList(c *gin.Context) {
	agent, err := utils.GetAgent(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	keyword := c.Query("keyword")
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 10
	}

	utils.LogInfo(map[string]interface{}{
		"agent":   agent.Pin,
		"page":    page,
		"limit":   limit,
		"keyword": keyword,
	}, "获取客户列表")

	ctx := repository.GetContext()
	source := repository.NewMongoCustomerSource()

	customers, totalCount, err := source.FetchPage(ctx, keyword, page, limit)
	if err != nil {
		if cfg != nil && cfg.UseLocalFallback {
			// 本地降级，继续提供演示数据
			utils.LogError(err, map[string]interface{}{"keyword": keyword}, "远端查询失败，切换到本地数据")
			customers, totalCount, _ = repository.NewFixtureCustomerSource().FetchPage(ctx, keyword, page, limit)
		} else {
			utils.HandleError(c, err)
			return
		}
	}

	if customers == nil {
		customers = []models.Customer{}
	}

	utils.LogInfo(map[string]interface{}{
		"count": len(customers),
		"total": totalCount,
		"page":  page,
		"limit": limit,
	}, "成功获取客户列表")

	utils.PaginatedResponse(c, customers, totalCount, int64(page), int64(limit))
}

// duplicateOwner 按组合键查找冲突的现有客户，excludeID用于更新时跳过自身
func duplicateOwner(name string, mobiles []string, excludeID string) (string, error) {
	collection := repository.Collection(repository.CustomersCollection)

	cursor, err := collection.Find(repository.GetContext(), bson.M{})
	if err != nil {
		return "", err
	}
	defer cursor.Close(repository.GetContext())

	var existing []models.Customer
	if err := cursor.All(repository.GetContext(), &existing); err != nil {
		return "", err
	}

	keys := make(map[string]bool, len(mobiles))
	for _, m := range mobiles {
		keys[utils.CompositeKey(name, m)] = true
	}

	for _, customer := range existing {
		if excludeID != "" && customer.ID.Hex() == excludeID {
			continue
		}
		for _, m := range customer.Mobiles() {
			if keys[utils.CompositeKey(customer.Name, m)] {
				return customer.Name, nil
			}
		}
	}

	return "", nil
}

// validateCustomerPhones 归一化并校验一组手机号
// 返回归一化结果，主号码在前
func validateCustomerPhones(mobile1 string, mobile2, mobile3 *string) ([]string, error) {
	if mobile1 == "" {
		return nil, utils.CreateBadRequestError("主手机号不能为空")
	}

	raw := []string{mobile1}
	if mobile2 != nil && *mobile2 != "" {
		raw = append(raw, *mobile2)
	}
	if mobile3 != nil && *mobile3 != "" {
		raw = append(raw, *mobile3)
	}

	normalized := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, m := range raw {
		if !utils.IsValidMobile(m) {
			return nil, utils.CreateBadRequestError(fmt.Sprintf("手机号格式无效: %s", m))
		}
		n := utils.NormalizeMobile(m)
		if seen[n] {
			return nil, utils.CreateBadRequestError(fmt.Sprintf("手机号重复: %s", n))
		}
		seen[n] = true
		normalized = append(normalized, n)
	}

	return normalized, nil
}

// CreateCustomer 创建客户
func CreateCustomer(c *gin.Context) {
	agent, err := utils.GetAgent(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var requestData models.CustomerCreateRequest
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	if requestData.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "客户名称不能为空"})
		return
	}

	mobiles, err := validateCustomerPhones(requestData.Mobile1, requestData.Mobile2, requestData.Mobile3)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"name":  requestData.Name,
		"agent": agent.Pin,
	}, "创建客户")

	// 组合键查重，尽力而为，不是数据库约束
	owner, err := duplicateOwner(requestData.Name, mobiles, "")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if owner != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("疑似重复客户，与已有客户 %q 冲突", owner),
		})
		return
	}

	now := time.Now()
	newCustomer := models.Customer{
		ID:        primitive.NewObjectID(),
		Name:      requestData.Name,
		Mobile1:   mobiles[0],
		Street:    requestData.Street,
		City:      requestData.City,
		State:     requestData.State,
		ZipCode:   requestData.ZipCode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(mobiles) > 1 {
		newCustomer.Mobile2 = &mobiles[1]
	}
	if len(mobiles) > 2 {
		newCustomer.Mobile3 = &mobiles[2]
	}

	collection := repository.Collection(repository.CustomersCollection)
	_, err = collection.InsertOne(repository.GetContext(), newCustomer)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"id":   newCustomer.ID.Hex(),
		"name": newCustomer.Name,
	}, "客户创建成功")

	c.JSON(http.StatusCreated, gin.H{
		"message":  "创建客户成功",
		"customer": newCustomer,
	})
}

// CheckDuplicateCustomers 批量查重
// 请求体提供 name+mobile 候选列表，返回冲突项
func CheckDuplicateCustomers(c *gin.Context) {
	var requestBody struct {
		Candidates []struct {
			Name   string `json:"name"`
			Mobile string `json:"mobile"`
		} `json:"candidates"`
	}

	if err := c.ShouldBindJSON(&requestBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据"})
		return
	}

	if len(requestBody.Candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "候选列表不能为空"})
		return
	}

	type duplicate struct {
		Name     string `json:"name"`
		Mobile   string `json:"mobile"`
		Existing string `json:"existing"`
	}
	duplicates := []duplicate{}

	for _, cand := range requestBody.Candidates {
		owner, err := duplicateOwner(cand.Name, []string{utils.NormalizeMobile(cand.Mobile)}, "")
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		if owner != "" {
			duplicates = append(duplicates, duplicate{
				Name:     cand.Name,
				Mobile:   cand.Mobile,
				Existing: owner,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"exists":     len(duplicates) > 0,
		"duplicates": duplicates,
	})
}

// GetCustomerDetail 获取单个客户详情
func GetCustomerDetail(c *gin.Context) {
	id := c.Param("id")

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的客户ID"})
		return
	}

	collection := repository.Collection(repository.CustomersCollection)

	var customer models.Customer
	err = collection.FindOne(repository.GetContext(), bson.M{"_id": objectID}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// GetCustomerCallLink 获取拨号链接
// 本系统不发起呼叫，只返回 tel: 地址供客户端导航
func GetCustomerCallLink(c *gin.Context) {
	id := c.Param("id")
	slot := c.DefaultQuery("slot", "1")

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的客户ID"})
		return
	}

	var customer models.Customer
	err = repository.Collection(repository.CustomersCollection).
		FindOne(repository.GetContext(), bson.M{"_id": objectID}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	var mobile string
	switch slot {
	case "1":
		mobile = customer.Mobile1
	case "2":
		if customer.Mobile2 != nil {
			mobile = *customer.Mobile2
		}
	case "3":
		if customer.Mobile3 != nil {
			mobile = *customer.Mobile3
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的号码槽位"})
		return
	}

	if mobile == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "该槽位没有手机号"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"telUri": utils.TelURI(mobile)})
}

// UpdateCustomer 更新客户
func UpdateCustomer(c *gin.Context) {
	id := c.Param("id")

	var updateData models.CustomerUpdateRequest
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的客户ID"})
		return
	}

	collection := repository.Collection(repository.CustomersCollection)

	var customer models.Customer
	err = collection.FindOne(repository.GetContext(), bson.M{"_id": objectID}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 合并修改后的完整状态再做校验
	merged := customer
	if updateData.Name != nil {
		merged.Name = *updateData.Name
	}
	if updateData.Mobile1 != nil {
		merged.Mobile1 = *updateData.Mobile1
	}
	if updateData.Mobile2 != nil {
		merged.Mobile2 = updateData.Mobile2
	}
	if updateData.Mobile3 != nil {
		merged.Mobile3 = updateData.Mobile3
	}
	if updateData.Street != nil {
		merged.Street = *updateData.Street
	}
	if updateData.City != nil {
		merged.City = *updateData.City
	}
	if updateData.State != nil {
		merged.State = *updateData.State
	}
	if updateData.ZipCode != nil {
		merged.ZipCode = *updateData.ZipCode
	}

	if merged.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "客户名称不能为空"})
		return
	}

	mobiles, err := validateCustomerPhones(merged.Mobile1, merged.Mobile2, merged.Mobile3)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	owner, err := duplicateOwner(merged.Name, mobiles, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if owner != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("疑似重复客户，与已有客户 %q 冲突", owner),
		})
		return
	}

	merged.Mobile1 = mobiles[0]
	merged.Mobile2 = nil
	merged.Mobile3 = nil
	if len(mobiles) > 1 {
		merged.Mobile2 = &mobiles[1]
	}
	if len(mobiles) > 2 {
		merged.Mobile3 = &mobiles[2]
	}
	merged.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"name":      merged.Name,
		"mobile1":   merged.Mobile1,
		"mobile2":   merged.Mobile2,
		"mobile3":   merged.Mobile3,
		"street":    merged.Street,
		"city":      merged.City,
		"state":     merged.State,
		"zipcode":   merged.ZipCode,
		"updatedat": merged.UpdatedAt,
	}}

	result, err := collection.UpdateOne(repository.GetContext(), bson.M{"_id": objectID}, update)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
		return
	}

	utils.LogInfo(map[string]interface{}{
		"id":   id,
		"name": merged.Name,
	}, "客户更新成功")

	c.JSON(http.StatusOK, gin.H{
		"message":  "客户更新成功",
		"customer": merged,
	})
}

// DeleteCustomer 删除客户
func DeleteCustomer(c *gin.Context) {
	id := c.Param("id")

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的客户ID"})
		return
	}

	collection := repository.Collection(repository.CustomersCollection)

	var customer models.Customer
	err = collection.FindOne(repository.GetContext(), bson.M{"_id": objectID}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 删除客户相关的通话记录
	callRecords := repository.Collection(repository.CallRecordsCollection)
	_, err = callRecords.DeleteMany(repository.GetContext(), bson.M{"customerId": id})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	result, err := collection.DeleteOne(repository.GetContext(), bson.M{"_id": objectID})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "客户不存在或已被删除"})
		return
	}

	utils.LogInfo(map[string]interface{}{
		"id":   id,
		"name": customer.Name,
	}, "客户删除成功")

	c.JSON(http.StatusOK, gin.H{"message": "客户删除成功"})
}

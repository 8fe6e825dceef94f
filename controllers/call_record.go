package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"
	"github.com/modidiviyansh/customer-call-tracker-sub000/repository"
	"github.com/modidiviyansh/customer-call-tracker-sub000/utils"
)

// GetCustomerCallRecords 获取某个客户的通话记录列表
func GetCustomerCallRecords(c *gin.Context) {
	customerId := c.Param("id")
	if customerId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "客户ID不能为空"})
		return
	}

	ctx := repository.GetContext()

	// 先验证客户是否存在
	customersCollection := repository.Collection(repository.CustomersCollection)

	customerObjId, err := primitive.ObjectIDFromHex(customerId)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的客户ID"})
		return
	}

	var customer bson.M
	err = customersCollection.FindOne(ctx, bson.M{"_id": customerObjId}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	// 查询通话记录，按通话时间倒序
	collection := repository.Collection(repository.CallRecordsCollection)
	opts := options.Find().SetSort(bson.M{"callDate": -1})

	cursor, err := collection.Find(ctx, bson.M{"customerId": customerId}, opts)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var records []models.CallRecord
	if err = cursor.All(ctx, &records); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"customerId":  customerId,
		"recordCount": len(records),
	}, "获取客户通话记录成功")

	c.JSON(http.StatusOK, gin.H{"records": records})
}

// CreateCallRecord 提交通话处置结果
// 处置结果必选；回访日期、备注、时长、评分可选；时长按分钟提交存储为秒
func CreateCallRecord(c *gin.Context) {
	var input models.CreateCallRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据"})
		return
	}

	agent, err := utils.GetAgent(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if !input.Disposition.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的处置结果: " + string(input.Disposition)})
		return
	}

	if input.OutcomeScore != 0 && (input.OutcomeScore < 1 || input.OutcomeScore > 10) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "评分必须在1到10之间"})
		return
	}

	var nextCallDate *time.Time
	if input.NextCallDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input.NextCallDate, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "回访日期格式无效(要求YYYY-MM-DD)"})
			return
		}
		nextCallDate = &parsed
	}

	ctx := repository.GetContext()

	// 验证客户是否存在
	customersCollection := repository.Collection(repository.CustomersCollection)
	customerObjId, err := primitive.ObjectIDFromHex(input.CustomerId)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的客户ID"})
		return
	}

	var customer bson.M
	err = customersCollection.FindOne(ctx, bson.M{"_id": customerObjId}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	collection := repository.Collection(repository.CallRecordsCollection)

	now := time.Now()
	newRecord := models.CallRecord{
		CustomerId:      input.CustomerId,
		AgentPin:        agent.Pin,
		CallDate:        now,
		NextCallDate:    nextCallDate,
		Disposition:     input.Disposition,
		Remarks:         input.Remarks,
		DurationSeconds: int(input.DurationMinutes * 60),
		OutcomeScore:    input.OutcomeScore,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	result, err := collection.InsertOne(ctx, newRecord)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	// 更新客户最后更新时间
	_, err = customersCollection.UpdateOne(
		ctx,
		bson.M{"_id": customerObjId},
		bson.M{"$set": bson.M{"updatedat": now}},
	)
	if err != nil {
		// 只记录错误但不影响主流程
		utils.LogInfo(map[string]interface{}{
			"customerId": input.CustomerId,
			"error":      err.Error(),
		}, "更新客户最后更新时间失败")
	}

	newRecord.ID = result.InsertedID.(primitive.ObjectID)

	utils.LogInfo(map[string]interface{}{
		"recordId":    newRecord.ID.Hex(),
		"customerId":  input.CustomerId,
		"disposition": input.Disposition,
	}, "创建通话记录成功")

	c.JSON(http.StatusCreated, gin.H{
		"message": "创建通话记录成功",
		"record":  newRecord,
	})
}

// UpdateCallRecord 更新通话记录
// 记录创建后不可变，只能通过本接口显式修改；UI侧从不删除
func UpdateCallRecord(c *gin.Context) {
	id := c.Param("id")

	var input models.UpdateCallRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据"})
		return
	}

	recordId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的记录ID"})
		return
	}

	ctx := repository.GetContext()
	collection := repository.Collection(repository.CallRecordsCollection)

	var record models.CallRecord
	err = collection.FindOne(ctx, bson.M{"_id": recordId}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "通话记录不存在"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	update := bson.M{"updatedAt": time.Now()}

	if input.Disposition != nil {
		if !input.Disposition.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的处置结果: " + string(*input.Disposition)})
			return
		}
		update["disposition"] = *input.Disposition
	}
	if input.Remarks != nil {
		update["remarks"] = *input.Remarks
	}
	if input.NextCallDate != nil {
		if *input.NextCallDate == "" {
			update["nextCallDate"] = nil
		} else {
			parsed, err := time.ParseInLocation("2006-01-02", *input.NextCallDate, time.Local)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "回访日期格式无效(要求YYYY-MM-DD)"})
				return
			}
			update["nextCallDate"] = parsed
		}
	}
	if input.OutcomeScore != nil {
		if *input.OutcomeScore < 1 || *input.OutcomeScore > 10 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "评分必须在1到10之间"})
			return
		}
		update["outcomeScore"] = *input.OutcomeScore
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": recordId}, bson.M{"$set": update})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "通话记录不存在"})
		return
	}

	utils.LogInfo(map[string]interface{}{
		"recordId": id,
	}, "更新通话记录成功")

	c.JSON(http.StatusOK, gin.H{"message": "更新通话记录成功"})
}

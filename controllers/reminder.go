package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/modidiviyansh/customer-call-tracker-sub000/repository"
	"github.com/modidiviyansh/customer-call-tracker-sub000/service"
	"github.com/modidiviyansh/customer-call-tracker-sub000/utils"
)

// GetReminders 获取当前坐席的回访提醒
// 每次请求重新分桶：逾期 / 今天 / 未来7天内
func GetReminders(c *gin.Context) {
	agent, err := utils.GetAgent(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	buckets, err := service.FetchReminderBuckets(repository.GetContext(), agent.Pin)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"agent":    agent.Pin,
		"overdue":  len(buckets.Overdue),
		"today":    len(buckets.Today),
		"upcoming": len(buckets.Upcoming),
	}, "获取回访提醒成功")

	utils.SuccessResponse(c, buckets, "")
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/modidiviyansh/customer-call-tracker-sub000/repository"
	"github.com/modidiviyansh/customer-call-tracker-sub000/service"
	"github.com/modidiviyansh/customer-call-tracker-sub000/utils"
)

// ImportCustomers 批量导入客户CSV
// 表头不合法整个文件拒绝；行级失败收集进报告，不回滚已提交的行
func ImportCustomers(c *gin.Context) {
	agent, err := utils.GetAgent(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件: " + err.Error()})
		return
	}
	defer file.Close()

	utils.LogInfo(map[string]interface{}{
		"agent":    agent.Pin,
		"filename": header.Filename,
		"size":     header.Size,
	}, "开始批量导入客户")

	importer := service.NewImporter(repository.NewMongoImportStore(), agent.Pin)
	report, err := importer.ImportCustomers(repository.GetContext(), file)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, report, "客户导入完成")
}

// ImportReminders 批量导入提醒CSV
// 每行按手机号定位客户，匹配不到或匹配多个都算该行失败
func ImportReminders(c *gin.Context) {
	agent, err := utils.GetAgent(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件: " + err.Error()})
		return
	}
	defer file.Close()

	utils.LogInfo(map[string]interface{}{
		"agent":    agent.Pin,
		"filename": header.Filename,
		"size":     header.Size,
	}, "开始批量导入提醒")

	importer := service.NewImporter(repository.NewMongoImportStore(), agent.Pin)
	report, err := importer.ImportReminders(repository.GetContext(), file)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, report, "提醒导入完成")
}

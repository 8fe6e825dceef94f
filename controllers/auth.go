package controllers

import (
	"net/http"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"
	"github.com/modidiviyansh/customer-call-tracker-sub000/utils"

	"github.com/gin-gonic/gin"
)

// Login 坐席PIN登录
// PIN只在内存中比较，匹配成功后签发会话token
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.LogApiRequest("POST", "/api/auth/login", nil, gin.H{
		"pin": "****",
	}, nil)

	if !utils.VerifyPIN(req.PIN) {
		utils.Logger.Info().Msg("登录失败: PIN错误")
		utils.ErrorResponse(c, "PIN错误", http.StatusUnauthorized)
		return
	}

	// 生成JWT令牌
	token, err := utils.GenerateToken(req.PIN)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("生成token失败")
		utils.ErrorResponse(c, "生成登录令牌失败，请重试", http.StatusInternalServerError)
		return
	}

	utils.Logger.Info().Msg("坐席登录成功")
	utils.SuccessResponse(c, models.LoginResponse{
		Token:    token,
		AgentPin: req.PIN,
	}, "")
}

// Verify 校验当前会话
// 客户端启动时用来恢复会话
func Verify(c *gin.Context) {
	agent, err := utils.GetAgent(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	utils.SuccessResponse(c, gin.H{"agentPin": agent.Pin}, "")
}

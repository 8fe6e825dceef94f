package models

// Disposition 通话处置结果枚举
type Disposition string

const (
	DispositionCompleted     Disposition = "completed"
	DispositionNoAnswer      Disposition = "no_answer"
	DispositionBusy          Disposition = "busy"
	DispositionFollowUp      Disposition = "follow_up"
	DispositionInvalid       Disposition = "invalid"
	DispositionNotInterested Disposition = "not_interested"
)

// IsValid 判断是否为合法的处置结果
func (d Disposition) IsValid() bool {
	switch d {
	case DispositionCompleted, DispositionNoAnswer, DispositionBusy,
		DispositionFollowUp, DispositionInvalid, DispositionNotInterested:
		return true
	}
	return false
}

// 各种请求和响应结构
type (
	// LoginRequest 坐席PIN登录请求
	LoginRequest struct {
		PIN string `json:"pin" binding:"required,len=4"`
	}

	// LoginResponse 登录响应
	LoginResponse struct {
		Token    string `json:"token"`
		AgentPin string `json:"agentPin"`
	}
)

package service

import (
	"context"
	"time"

	"github.com/modidiviyansh/customer-call-tracker-sub000/utils"

	"github.com/robfig/cron/v3"
)

// ReminderScheduler 每日提醒汇总任务
type ReminderScheduler struct {
	cronEngine *cron.Cron
	agentPin   string
	spec       string
}

// NewReminderScheduler 创建定时任务
func NewReminderScheduler(agentPin, spec string) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		agentPin:   agentPin,
		spec:       spec,
	}
}

// Start 注册并启动定时任务
func (s *ReminderScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.spec, func() {
		s.logDueReminders()
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	utils.LogInfo(map[string]interface{}{"spec": s.spec}, "提醒汇总定时任务已启动")
	return nil
}

// Stop 停止定时任务
func (s *ReminderScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	utils.Logger.Info().Msg("提醒汇总定时任务已停止")
}

// logDueReminders 输出当天的提醒概况
func (s *ReminderScheduler) logDueReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	buckets, err := FetchReminderBuckets(ctx, s.agentPin)
	if err != nil {
		utils.LogError(err, map[string]interface{}{"agentPin": s.agentPin}, "每日提醒汇总失败")
		return
	}

	utils.LogInfo(map[string]interface{}{
		"overdue":  len(buckets.Overdue),
		"today":    len(buckets.Today),
		"upcoming": len(buckets.Upcoming),
	}, "每日提醒汇总")
}

package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"github.com/yihuban/yihuban/internal/config"
	"github.com/yihuban/yihuban/pkg/logger"
	"github.com/yihuban/yihuban/pkg/model"
)

// MailDispatcher 基于 SMTP 的通知分发器
type MailDispatcher struct {
	client *mail.Client
	from   string
}

// NewMailDispatcher 创建 SMTP 分发器
func NewMailDispatcher(cfg *config.Config) (*MailDispatcher, error) {
	client, err := mail.NewClient(cfg.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.SMTP.Port),
		mail.WithUsername(cfg.SMTP.Username),
		mail.WithPassword(cfg.SMTP.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("创建邮件客户端失败: %w", err)
	}
	return &MailDispatcher{client: client, from: cfg.SMTP.From}, nil
}

// ScheduleGenerated 发送排班完成通知
func (d *MailDispatcher) ScheduleGenerated(ctx context.Context, recipients []string, result *model.OptimizedSchedule) error {
	body := fmt.Sprintf(
		"周起始：%s\n可行：%t\n约束得分：%d\n公平性得分：%d\n覆盖率：%.0f%%\n",
		result.WeekStart,
		result.Validation.IsValid,
		result.Validation.Score,
		result.FairnessScore,
		result.Metrics.CoverageRate*100,
	)
	if len(result.Validation.Violations) > 0 {
		lines := make([]string, 0, len(result.Validation.Violations))
		for _, viol := range result.Validation.Violations {
			lines = append(lines, "- "+viol.Message)
		}
		body += "\n约束冲突：\n" + strings.Join(lines, "\n") + "\n"
	}
	return d.send(ctx, recipients, scheduleSubject(result), body)
}

// SwapDecided 发送换班结论通知
func (d *MailDispatcher) SwapDecided(ctx context.Context, recipients []string, requester, target string, approved bool) error {
	verdict := "已通过校验"
	if !approved {
		verdict = "未通过校验"
	}
	body := fmt.Sprintf("%s 与 %s 的换班申请%s。\n", requester, target, verdict)
	return d.send(ctx, recipients, "换班申请评估结果", body)
}

// send 构建并投递邮件，逐收件人容错
func (d *MailDispatcher) send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(d.from); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("设置收件人失败: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := d.client.DialAndSendWithContext(ctx, msg); err != nil {
		logger.Error().Err(err).Str("subject", subject).Msg("通知邮件发送失败")
		return fmt.Errorf("邮件发送失败: %w", err)
	}
	return nil
}

// Close 关闭 SMTP 客户端
func (d *MailDispatcher) Close() error {
	return d.client.Close()
}

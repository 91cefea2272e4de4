package service

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tasknotes/internal/recurrence"
)

// Notifier posts generation summaries to a Telegram chat. It is optional:
// when no token is configured the server simply runs without it.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zap.SugaredLogger
}

func NewNotifier(token string, chatID int64, log *zap.SugaredLogger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID, log: log}, nil
}

// SendGenerationReport posts a short HTML summary of a batch run.
func (n *Notifier) SendGenerationReport(report *recurrence.Report) error {
	var builder strings.Builder
	builder.WriteString("<b>Recurring task generation</b>\n")
	builder.WriteString(fmt.Sprintf("Created %d task(s)\n", len(report.Generated)))

	byTemplate := make(map[string]int)
	for _, created := range report.Generated {
		byTemplate[created.TemplateID]++
	}
	for templateID, count := range byTemplate {
		builder.WriteString(fmt.Sprintf("• %s: %d\n", html.EscapeString(templateID), count))
	}

	if len(report.Failures) > 0 {
		builder.WriteString(fmt.Sprintf("\n⚠️ %d template(s) failed:\n", len(report.Failures)))
		for _, failure := range report.Failures {
			builder.WriteString(fmt.Sprintf("• %s: %s\n",
				html.EscapeString(failure.TemplateID), html.EscapeString(failure.Error)))
		}
	}

	msg := tgbotapi.NewMessage(n.chatID, strings.TrimSpace(builder.String()))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

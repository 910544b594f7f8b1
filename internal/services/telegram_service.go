package services

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"agroterra/internal/repositories"
)

// TelegramService pushes task reminders to workers who linked a chat.
// Reminders are best-effort: a missing link or a failed send is logged and
// skipped, never bubbled up to the caller.
type TelegramService struct {
	bot      *tgbotapi.BotAPI
	accounts repositories.AccountRepository
}

func NewTelegramService(botToken string, accounts repositories.AccountRepository) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	log.Printf("[tg] authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot, accounts: accounts}, nil
}

func (t *TelegramService) NotifyAssignee(ctx context.Context, accountID int, html string) error {
	if t == nil || t.bot == nil {
		return nil
	}
	chatID, notify, err := t.accounts.GetTelegramSettings(ctx, accountID)
	if err != nil {
		return err
	}
	if chatID == 0 || !notify {
		log.Printf("[tg][skip] no linked chat or muted: account_id=%d", accountID)
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

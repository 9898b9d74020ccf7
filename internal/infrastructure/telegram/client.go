package telegram

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "pingme/internal/pkg/errors"
	"pingme/internal/pkg/logger"
)

// Client wraps the Telegram Bot API client.
type Client struct {
	*tgbotapi.BotAPI
	log logger.Logger
}

var (
	clientInstance *Client
	once           sync.Once
)

// NewClient creates a new singleton instance of the Telegram Bot client.
// It reads the token from the TELEGRAM_BOT_TOKEN environment variable.
// The underlying HTTP client carries a bounded timeout so one unreachable
// delivery cannot stall the dispatch loop.
func NewClient(log logger.Logger) *Client {
	once.Do(func() {
		token := os.Getenv("TELEGRAM_BOT_TOKEN")
		if token == "" {
			log.Error("TELEGRAM_BOT_TOKEN environment variable must be set", nil)
			os.Exit(1)
		}

		httpClient := &http.Client{Timeout: 10 * time.Second}
		bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
		if err != nil {
			log.Error("Failed to create Telegram Bot client", err)
			os.Exit(1)
		}
		log.Info(fmt.Sprintf("Authorized as @%s", bot.Self.UserName))
		clientInstance = &Client{
			BotAPI: bot,
			log:    log,
		}
	})
	return clientInstance
}

// SetupWebhook registers the webhook URL with Telegram when WEBHOOK_URL is set.
func (c *Client) SetupWebhook(path string) error {
	base := os.Getenv("WEBHOOK_URL")
	if base == "" {
		c.log.Warn("WEBHOOK_URL not set, skipping webhook registration")
		return nil
	}

	wh, err := tgbotapi.NewWebhook(base + path)
	if err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}
	if _, err := c.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := c.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		c.log.Warn(fmt.Sprintf("Webhook last error: %s", info.LastErrorMessage))
	}
	c.log.Info(fmt.Sprintf("Webhook set to %s%s", base, path))
	return nil
}

// Deliver sends a reminder notification with Done/Snooze buttons.
// It satisfies the dispatcher's notifier contract; any transport failure is
// reported as ErrNotifierUnavailable so the caller leaves state untouched
// and retries on the next pass.
func (c *Client) Deliver(ctx context.Context, ownerID int64, text string, reminderID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrNotifierUnavailable, err)
	}

	msg := tgbotapi.NewMessage(ownerID, fmt.Sprintf("⏰ <b>Напоминание!</b>\n\n%s", text))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = ReminderKeyboard(reminderID)

	if _, err := c.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrNotifierUnavailable, err)
	}
	return nil
}

// SendText sends a plain HTML-formatted message to a chat.
func (c *Client) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := c.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrNotifierUnavailable, err)
	}
	return nil
}

// EditText rewrites a previously sent message, dropping its keyboard.
func (c *Client) EditText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := c.Request(edit); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrNotifierUnavailable, err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query with an optional toast.
func (c *Client) AnswerCallback(callbackID, text string) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if _, err := c.Request(cb); err != nil {
		c.log.Debug(fmt.Sprintf("answer callback failed: %v", err))
	}
}

// ReminderKeyboard builds the Done/Snooze inline keyboard for a reminder.
func ReminderKeyboard(reminderID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Выполнено", fmt.Sprintf("rem:done:%d", reminderID)),
			tgbotapi.NewInlineKeyboardButtonData("🕐 Отложить", fmt.Sprintf("rem:snooze:%d", reminderID)),
		),
	)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"pingme/internal/application/dto"
	"pingme/internal/application/service"
	"pingme/internal/domain/entity"
	"pingme/internal/infrastructure/telegram"
	appErrors "pingme/internal/pkg/errors"
	"pingme/internal/pkg/logger"
	"pingme/internal/timeparse"
)

const helpText = `Я бот-напоминалка. Напишите мне, о чём и когда напомнить, например:

• напомни через 30 минут позвонить маме
• завтра в 19:00 тренировка
• 25.12 купить подарки
• в пятницу сдать отчёт

Если вы укажете только дату, я спрошу время.

Команды:
/list — активные напоминания
/delete N — удалить напоминание с номером N
/cancel — отменить текущий вопрос о времени
/tz Europe/Moscow — сменить часовой пояс
/snooze 30 — интервал откладывания в минутах`

// TelegramHandler handles incoming Telegram webhook updates.
type TelegramHandler struct {
	tgClient        *telegram.Client
	userService     service.UserService
	reminderService service.ReminderService
	log             logger.Logger
}

// NewTelegramHandler creates a new TelegramHandler.
func NewTelegramHandler(
	tgClient *telegram.Client,
	userService service.UserService,
	reminderService service.ReminderService,
	log logger.Logger,
) *TelegramHandler {
	return &TelegramHandler{
		tgClient:        tgClient,
		userService:     userService,
		reminderService: reminderService,
		log:             log,
	}
}

// HandleWebhook is the main entry point for webhook requests.
// Telegram expects 200 OK for every update; failures are reported to the
// user in chat, never via the HTTP status.
func (h *TelegramHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	var update tgbotapi.Update
	if err := json.NewDecoder(c.Request().Body).Decode(&update); err != nil {
		h.log.Warn(fmt.Sprintf("Failed to decode webhook update: %v", err))
		return c.String(http.StatusBadRequest, "invalid update")
	}

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		h.handleMessage(ctx, update.Message)
	default:
		h.log.Debug("Unhandled update type")
	}

	return c.String(http.StatusOK, "OK")
}

// handleMessage processes text messages: commands first, then free-form
// reminder text.
func (h *TelegramHandler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	h.log.Info(fmt.Sprintf("Received message from %d: %s", chatID, msg.Text))

	req := dto.RegisterUserRequest{TelegramID: chatID}
	if msg.From != nil {
		req.Username = nilIfEmpty(msg.From.UserName)
		req.FirstName = nilIfEmpty(msg.From.FirstName)
	}
	user, err := h.userService.GetOrCreateUser(ctx, req)
	if err != nil {
		h.reply(chatID, "Не удалось загрузить ваш профиль, попробуйте ещё раз.")
		return
	}

	if msg.IsCommand() {
		h.handleCommand(ctx, user, msg)
		return
	}

	if h.reminderService.AwaitingClarification(chatID) {
		h.handleTimeAnswer(ctx, user, chatID, msg.Text)
		return
	}

	h.handleNewReminder(ctx, user, chatID, msg.Text)
}

func (h *TelegramHandler) handleCommand(ctx context.Context, user *entity.User, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		h.reply(chatID, "Привет! 👋\n\n"+helpText)
	case "help":
		h.reply(chatID, helpText)
	case "list":
		h.sendReminderList(ctx, user, chatID)
	case "delete":
		h.handleDelete(ctx, chatID, args)
	case "cancel":
		h.handleCancel(ctx, chatID)
	case "tz":
		h.handleTimezone(ctx, user, chatID, args)
	case "snooze":
		h.handleSnoozeSetting(ctx, user, chatID, args)
	default:
		h.reply(chatID, "Не знаю такой команды. /help покажет, что я умею.")
	}
}

// handleNewReminder parses free text into a new reminder.
func (h *TelegramHandler) handleNewReminder(ctx context.Context, user *entity.User, chatID int64, text string) {
	outcome, err := h.reminderService.CreateFromText(ctx, dto.CreateFromTextRequest{
		OwnerID: chatID,
		Text:    text,
	})
	if err != nil {
		h.reply(chatID, "Не удалось сохранить напоминание, попробуйте ещё раз.")
		return
	}

	switch outcome.Kind {
	case dto.OutcomeCreated:
		due := outcome.Reminder.DueAt.In(user.Location())
		h.reply(chatID, fmt.Sprintf("✅ Напомню %s:\n«%s»", formatDue(due), outcome.Reminder.Text))
	case dto.OutcomeNeedsTime:
		h.reply(chatID, fmt.Sprintf("📅 %s. А во сколько напомнить?\n\nНапишите время, например «10:00» или «7 вечера». /cancel — отменить.", formatDate(outcome.Date)))
	default:
		h.replyUnparseable(chatID, outcome.Reason)
	}
}

// handleTimeAnswer completes a pending clarification.
func (h *TelegramHandler) handleTimeAnswer(ctx context.Context, user *entity.User, chatID int64, text string) {
	reminder, err := h.reminderService.SupplyTime(ctx, chatID, text)
	if err != nil {
		switch {
		case errors.Is(err, appErrors.ErrPastTime):
			h.reply(chatID, "⏰ Это время уже прошло. Укажите другое время или /cancel.")
		case errors.Is(err, appErrors.ErrNoPendingClarification):
			h.reply(chatID, "Сейчас я не жду времени. Напишите напоминание целиком.")
		default:
			// «через 30 минут позвонить» is not a clock time but does carry
			// its own temporal expression: treat it as a new reminder that
			// supersedes the open question.
			if timeparse.HasExplicitTime(text) {
				h.handleNewReminder(ctx, user, chatID, text)
				return
			}
			h.reply(chatID, "Не понял время. Напишите, например, «10:00» или «7 вечера». /cancel — отменить.")
		}
		return
	}
	due := reminder.DueAt.In(user.Location())
	h.reply(chatID, fmt.Sprintf("✅ Напомню %s:\n«%s»", formatDue(due), reminder.Text))
}

func (h *TelegramHandler) handleCancel(ctx context.Context, chatID int64) {
	err := h.reminderService.CancelClarification(ctx, chatID)
	if errors.Is(err, appErrors.ErrNoPendingClarification) {
		h.reply(chatID, "Нечего отменять.")
		return
	}
	if err != nil {
		h.reply(chatID, "Не удалось отменить, попробуйте ещё раз.")
		return
	}
	h.reply(chatID, "Хорошо, отменил.")
}

func (h *TelegramHandler) handleDelete(ctx context.Context, chatID int64, args string) {
	id, err := strconv.ParseUint(args, 10, 32)
	if err != nil {
		h.reply(chatID, "Укажите номер напоминания: /delete 3. Номера есть в /list.")
		return
	}
	err = h.reminderService.Delete(ctx, chatID, uint(id))
	switch {
	case err == nil:
		h.reply(chatID, "🗑 Напоминание удалено.")
	case errors.Is(err, appErrors.ErrNotFound):
		h.reply(chatID, "Такого напоминания нет. Проверьте номер в /list.")
	case errors.Is(err, appErrors.ErrAlreadyFinalized):
		h.reply(chatID, "Это напоминание уже завершено.")
	default:
		h.reply(chatID, "Не удалось удалить напоминание, попробуйте ещё раз.")
	}
}

func (h *TelegramHandler) handleTimezone(ctx context.Context, user *entity.User, chatID int64, args string) {
	if args == "" {
		h.reply(chatID, fmt.Sprintf("Ваш часовой пояс: %s\n\nСменить: /tz Europe/Moscow", user.Timezone))
		return
	}
	if err := h.userService.UpdateTimezone(ctx, chatID, args); err != nil {
		h.reply(chatID, fmt.Sprintf("Не знаю пояс «%s». Используйте имя из базы IANA, например Europe/Moscow или Asia/Novosibirsk.", args))
		return
	}
	h.reply(chatID, fmt.Sprintf("Часовой пояс изменён на %s.", args))
}

func (h *TelegramHandler) handleSnoozeSetting(ctx context.Context, user *entity.User, chatID int64, args string) {
	if args == "" {
		h.reply(chatID, fmt.Sprintf("Интервал откладывания: %d мин.\n\nСменить: /snooze 30", user.SnoozeMinutes))
		return
	}
	minutes, err := strconv.Atoi(args)
	if err != nil {
		h.reply(chatID, "Укажите интервал в минутах: /snooze 30")
		return
	}
	if err := h.userService.UpdateSnoozeMinutes(ctx, chatID, minutes); err != nil {
		h.reply(chatID, "Интервал должен быть от 1 минуты до суток.")
		return
	}
	h.reply(chatID, fmt.Sprintf("Теперь «Отложить» переносит напоминание на %d мин.", minutes))
}

func (h *TelegramHandler) sendReminderList(ctx context.Context, user *entity.User, chatID int64) {
	reminders, err := h.reminderService.ListActive(ctx, chatID)
	if err != nil {
		h.reply(chatID, "Не удалось получить список напоминаний.")
		return
	}
	if len(reminders) == 0 {
		h.reply(chatID, "Активных напоминаний нет.")
		return
	}

	loc := user.Location()
	var builder strings.Builder
	builder.WriteString("📋 <b>Ваши напоминания:</b>\n\n")
	for _, r := range reminders {
		when := "время не указано"
		if r.DueAt != nil {
			when = formatDue(r.DueAt.In(loc))
		}
		builder.WriteString(fmt.Sprintf("%d. %s\n«%s»\n\n", r.ID, when, r.Text))
	}
	builder.WriteString("Удалить: /delete N")
	h.reply(chatID, builder.String())
}

// handleCallback processes the Done/Snooze buttons under a delivered reminder.
func (h *TelegramHandler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.tgClient.AnswerCallback(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID
	action, id, ok := parseCallbackData(cb.Data)
	if !ok {
		h.log.Warn(fmt.Sprintf("Unknown callback data from %d: %s", chatID, cb.Data))
		h.tgClient.AnswerCallback(cb.ID, "")
		return
	}

	switch action {
	case "done":
		reminder, err := h.reminderService.Acknowledge(ctx, chatID, id)
		if err != nil {
			h.tgClient.AnswerCallback(cb.ID, h.callbackError(err))
			return
		}
		h.tgClient.AnswerCallback(cb.ID, "Готово!")
		h.editDelivered(chatID, cb.Message.MessageID, fmt.Sprintf("✅ <s>%s</s>\n\nВыполнено.", reminder.Text))
	case "snooze":
		user, err := h.userService.GetUser(ctx, chatID)
		if err != nil {
			h.tgClient.AnswerCallback(cb.ID, "Ошибка, попробуйте ещё раз.")
			return
		}
		reminder, until, err := h.reminderService.Snooze(ctx, chatID, id)
		if err != nil {
			h.tgClient.AnswerCallback(cb.ID, h.callbackError(err))
			return
		}
		h.tgClient.AnswerCallback(cb.ID, "Отложено")
		h.editDelivered(chatID, cb.Message.MessageID,
			fmt.Sprintf("🕐 «%s»\n\nОтложено до %s.", reminder.Text, formatDue(until.In(user.Location()))))
	}
}

func (h *TelegramHandler) callbackError(err error) string {
	if errors.Is(err, appErrors.ErrAlreadyFinalized) {
		return "Это напоминание уже завершено."
	}
	if errors.Is(err, appErrors.ErrNotFound) {
		return "Напоминание не найдено."
	}
	return "Ошибка, попробуйте ещё раз."
}

func (h *TelegramHandler) replyUnparseable(chatID int64, reason error) {
	switch {
	case errors.Is(reason, appErrors.ErrPastTime):
		h.reply(chatID, "⏰ Это время уже прошло. Напишите напоминание с будущей датой.")
	case errors.Is(reason, appErrors.ErrInvalidDate):
		h.reply(chatID, "Такой даты не существует. Проверьте день и месяц.")
	default:
		h.reply(chatID, "🤔 Не понял, когда напомнить. Напишите, например:\n«напомни завтра в 10:00 про встречу»\n«через 30 минут выключить духовку»")
	}
}

func (h *TelegramHandler) reply(chatID int64, text string) {
	if err := h.tgClient.SendText(chatID, text); err != nil {
		h.log.Error(fmt.Sprintf("Failed to send reply to %d", chatID), err)
	}
}

func (h *TelegramHandler) editDelivered(chatID int64, messageID int, text string) {
	if err := h.tgClient.EditText(chatID, messageID, text); err != nil {
		h.log.Debug(fmt.Sprintf("Failed to edit message %d in chat %d: %v", messageID, chatID, err))
	}
}

// parseCallbackData splits "rem:<action>:<id>" button payloads.
func parseCallbackData(data string) (action string, id uint, ok bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != "rem" {
		return "", 0, false
	}
	parsed, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return "", 0, false
	}
	return parts[1], uint(parsed), true
}

func formatDue(t time.Time) string {
	return t.Format("02.01.2006 в 15:04")
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

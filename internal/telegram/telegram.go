// Package telegram connects the dialog to the Telegram Bot API via long polling.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/bot"
	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/utils"
)

const pollTimeout = 60

type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ev bot.Event)
}

type Bot struct {
	log      *zap.Logger
	api      api
	keyboard *tgbotapi.ReplyKeyboardMarkup
}

// New authorizes against the Bot API. keyboard rows are attached to every reply.
func New(log *zap.Logger, token string, keyboard [][]string) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorizing telegram bot: %w", err)
	}

	log.Info("authorized on telegram", zap.String("account", botAPI.Self.UserName))

	return newBot(log, botAPI, keyboard), nil
}

func newBot(log *zap.Logger, a api, keyboard [][]string) *Bot {
	return &Bot{
		log:      log,
		api:      a,
		keyboard: buildKeyboard(keyboard),
	}
}

func buildKeyboard(rows [][]string) *tgbotapi.ReplyKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}

	buttons := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			line = append(line, tgbotapi.NewKeyboardButton(label))
		}
		buttons = append(buttons, tgbotapi.NewKeyboardButtonRow(line...))
	}

	markup := tgbotapi.NewReplyKeyboard(buttons...)
	markup.ResizeKeyboard = true
	return &markup
}

// SendMessage sends HTML text to the chat. Delivery failures are logged only.
func (b *Bot) SendMessage(_ context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if b.keyboard != nil {
		msg.ReplyMarkup = *b.keyboard
	}

	if _, err := b.api.Send(msg); err != nil {
		logger.WithChat(b.log, chatID).Error("failed to deliver message",
			zap.Error(err),
			zap.String("text", utils.Preview(text, 120)),
		)
	}
}

// Run polls updates and hands text messages to the dispatcher until ctx is done.
func (b *Bot) Run(ctx context.Context, d Dispatcher) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.Info("polling telegram updates")

	for {
		select {
		case <-ctx.Done():
			b.log.Info("stopped polling telegram updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("telegram updates channel closed")
			}
			if ev, ok := toEvent(update); ok {
				d.Dispatch(ctx, ev)
			}
		}
	}
}

func toEvent(update tgbotapi.Update) (bot.Event, bool) {
	if update.Message == nil || update.Message.Chat == nil || update.Message.Text == "" {
		return bot.Event{}, false
	}
	return bot.Event{ChatID: update.Message.Chat.ID, Text: update.Message.Text}, true
}

package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/vacancy-bot/internal/bot"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	sendErr error
	updates chan tgbotapi.Update
	stopped bool
}

func (a *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		a.sent = append(a.sent, msg)
	}
	return tgbotapi.Message{}, a.sendErr
}

func (a *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return a.updates
}

func (a *fakeAPI) StopReceivingUpdates() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
}

type recordingDispatcher struct {
	events chan bot.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, ev bot.Event) {
	d.events <- ev
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	a := &fakeAPI{}
	b := newBot(zap.NewNop(), a, [][]string{{"a", "b"}, {"c"}})

	b.SendMessage(context.Background(), 42, "<b>hi</b>")

	require.Len(t, a.sent, 1)
	msg := a.sent[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.True(t, msg.DisableWebPagePreview)

	markup, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.Keyboard, 2)
	assert.Equal(t, "b", markup.Keyboard[0][1].Text)
	assert.True(t, markup.ResizeKeyboard)
}

func TestSendMessageLogsFailures(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	b := newBot(zap.New(core), &fakeAPI{sendErr: errors.New("blocked by user")}, nil)

	b.SendMessage(context.Background(), 7, "text")

	entries := logs.FilterMessage("failed to deliver message").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["chat_id"])
}

func TestRun(t *testing.T) {
	t.Parallel()

	a := &fakeAPI{updates: make(chan tgbotapi.Update, 3)}
	d := &recordingDispatcher{events: make(chan bot.Event, 3)}
	b := newBot(zap.NewNop(), a, nil)

	a.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "/start"}}
	a.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}}
	a.updates <- tgbotapi.Update{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, d) }()

	select {
	case ev := <-d.events:
		assert.Equal(t, bot.Event{ChatID: 1, Text: "/start"}, ev)
	case <-time.After(time.Second):
		t.Fatal("event was not dispatched")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, d.events)
	assert.True(t, a.stopped)
}

func TestRunClosedChannel(t *testing.T) {
	t.Parallel()

	a := &fakeAPI{updates: make(chan tgbotapi.Update)}
	close(a.updates)

	err := newBot(zap.NewNop(), a, nil).Run(context.Background(), &recordingDispatcher{})
	assert.ErrorContains(t, err, "closed")
}

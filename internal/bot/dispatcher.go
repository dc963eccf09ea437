// Package bot delivers inbound chat messages to the dialog in per-chat order.
package bot

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/logger"
)

// Event is one inbound text message.
type Event struct {
	ChatID int64
	Text   string
}

// Handler processes a single event. It must not panic.
type Handler interface {
	Handle(ctx context.Context, chatID int64, text string)
}

// Dispatcher queues events per chat. Each non-empty queue is drained by exactly
// one worker, so events of one chat are handled in arrival order while different
// chats run concurrently.
type Dispatcher struct {
	log     *zap.Logger
	handler Handler

	mu     sync.Mutex
	queues map[int64][]Event
	wg     sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, handler Handler) *Dispatcher {
	return &Dispatcher{
		log:     log,
		handler: handler,
		queues:  make(map[int64][]Event),
	}
}

// Dispatch enqueues the event and starts a worker for the chat if none is running.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	d.mu.Lock()
	queue, running := d.queues[ev.ChatID]
	d.queues[ev.ChatID] = append(queue, ev)
	d.mu.Unlock()

	if running {
		return
	}

	d.wg.Add(1)
	go d.drain(ctx, ev.ChatID)
}

// Wait blocks until every queued event has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) drain(ctx context.Context, chatID int64) {
	defer d.wg.Done()

	log := logger.WithChat(d.log, chatID)
	log.Debug("chat worker started")

	for {
		d.mu.Lock()
		queue := d.queues[chatID]
		if len(queue) == 0 {
			delete(d.queues, chatID)
			d.mu.Unlock()
			log.Debug("chat worker finished")
			return
		}
		ev := queue[0]
		d.mu.Unlock()

		d.handler.Handle(ctx, ev.ChatID, ev.Text)

		d.mu.Lock()
		d.queues[chatID] = d.queues[chatID][1:]
		d.mu.Unlock()
	}
}

// Package notify pushes new matching postings to subscribed chats on a schedule.
package notify

import (
	"context"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/posting"
	"github.com/spigell/vacancy-bot/internal/search"
)

const digestHeader = "🔔 Новые вакансии по вашим фильтрам: "

type Subscribers interface {
	Subscribed() []int64
}

type Searcher interface {
	Search(ctx context.Context, chatID int64, order search.Order) ([]posting.Posting, error)
}

type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string)
}

// Notifier runs digests. Postings already delivered to a chat are remembered
// for the lifetime of the process and never sent again.
type Notifier struct {
	log         *zap.Logger
	cron        *cron.Cron
	schedule    string
	subscribers Subscribers
	searcher    Searcher
	sender      Sender

	mu   sync.Mutex
	seen map[int64]mapset.Set[string]
}

func New(log *zap.Logger, schedule string, subscribers Subscribers, searcher Searcher, sender Sender) *Notifier {
	return &Notifier{
		log:         log,
		cron:        cron.New(cron.WithLogger(cronLogger{log: log})),
		schedule:    schedule,
		subscribers: subscribers,
		searcher:    searcher,
		sender:      sender,
		seen:        make(map[int64]mapset.Set[string]),
	}
}

// Start registers the digest job and starts the scheduler.
func (n *Notifier) Start(ctx context.Context) error {
	_, err := n.cron.AddFunc(n.schedule, func() {
		n.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("adding digest job %q: %w", n.schedule, err)
	}

	n.cron.Start()
	n.log.Info("digest scheduler started", zap.String("schedule", n.schedule))

	return nil
}

// Stop stops the scheduler and waits for a running digest to finish.
func (n *Notifier) Stop() {
	<-n.cron.Stop().Done()
	n.log.Info("digest scheduler stopped")
}

// RunOnce sends a digest to every subscribed chat.
func (n *Notifier) RunOnce(ctx context.Context) {
	chats := n.subscribers.Subscribed()
	n.log.Info("digest cycle started", zap.Int("subscribers", len(chats)))

	for _, chatID := range chats {
		if ctx.Err() != nil {
			return
		}
		n.notify(ctx, chatID)
	}
}

func (n *Notifier) notify(ctx context.Context, chatID int64) {
	log := logger.WithChat(n.log, chatID)

	found, err := n.searcher.Search(ctx, chatID, search.ByDate)
	if err != nil {
		log.Error("digest search failed", zap.Error(err))
		return
	}

	fresh := n.unseen(chatID, found)
	log.Debug("digest prepared", zap.Int("found", len(found)), zap.Int("new", len(fresh)))
	if len(fresh) == 0 {
		return
	}

	n.sender.SendMessage(ctx, chatID, fmt.Sprintf("%s%d", digestHeader, len(fresh)))
	for _, p := range fresh {
		n.sender.SendMessage(ctx, chatID, posting.Format(p))
	}
}

// unseen returns postings not delivered before and marks them as delivered.
func (n *Notifier) unseen(chatID int64, postings []posting.Posting) []posting.Posting {
	n.mu.Lock()
	defer n.mu.Unlock()

	seen, ok := n.seen[chatID]
	if !ok {
		seen = mapset.NewThreadUnsafeSet[string]()
		n.seen[chatID] = seen
	}

	var fresh []posting.Posting
	for _, p := range postings {
		if seen.Add(p.ID) {
			fresh = append(fresh, p)
		}
	}

	return fresh
}

// cronLogger routes scheduler messages to zap.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

// Package dialog implements the per-chat conversation that edits filters and
// triggers searches.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/filter"
	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/posting"
	"github.com/spigell/vacancy-bot/internal/search"
	"github.com/spigell/vacancy-bot/internal/store"
	"github.com/spigell/vacancy-bot/internal/utils"
)

// Sender delivers outbound messages. Delivery failures are handled by the implementation.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string)
}

// Searcher runs a search with the chat's stored filter.
type Searcher interface {
	Search(ctx context.Context, chatID int64, order search.Order) ([]posting.Posting, error)
}

var (
	errInvalidSalary     = errors.New("salary must be a non-negative integer")
	errInvalidExperience = errors.New("experience must be a non-negative integer or off")
)

// Machine routes inbound text either to the pending field input or to a command.
type Machine struct {
	log      *zap.Logger
	store    *store.Store
	sessions *Sessions
	searcher Searcher
	sender   Sender
}

// New creates a dialog machine. searcher may be nil, search commands then
// reply that search is unavailable.
func New(log *zap.Logger, st *store.Store, sessions *Sessions, searcher Searcher, sender Sender) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{
		log:      log,
		store:    st,
		sessions: sessions,
		searcher: searcher,
		sender:   sender,
	}
}

// Handle processes one inbound message. It never panics: unexpected failures
// are logged, the session is reset and a generic reply is sent.
func (m *Machine) Handle(ctx context.Context, chatID int64, text string) {
	traceID := uuid.NewString()
	log := logger.WithTrace(logger.WithChat(m.log, chatID), traceID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling message", zap.Any("panic", r), zap.Stack("stack"))
			m.sessions.Reset(chatID)
			m.reply(ctx, chatID, msgInternalError)
		}
	}()

	if err := m.handle(ctx, log, traceID, chatID, text); err != nil {
		log.Error("failed to handle message", zap.Error(err))
		m.sessions.Reset(chatID)
		m.reply(ctx, chatID, msgInternalError)
	}
}

// State returns the current dialog state of the chat.
func (m *Machine) State(chatID int64) State {
	return m.sessions.Get(chatID).State
}

func (m *Machine) handle(ctx context.Context, log *zap.Logger, traceID string, chatID int64, text string) error {
	text = utils.NormalizeInput(text)
	session := m.sessions.Get(chatID)

	// While a field value is awaited only cancel is treated as a command.
	if cmd, args, ok := parseCommand(text); ok && (session.State == StateNone || cmd == cmdCancel) {
		return m.command(ctx, log, traceID, chatID, cmd, args, session)
	}

	switch session.State {
	case StateNone:
		m.reply(ctx, chatID, msgUnknown+msgHelp)
		return nil
	case StateAwaitingMinSalary, StateAwaitingMaxSalary, StateAwaitingCity, StateAwaitingKeyword:
		log.Debug("completing pending input",
			zap.String("state", string(session.State)),
			zap.String("prompt_trace_id", session.TempData),
		)
		m.sessions.Reset(chatID)
		return m.input(ctx, log, chatID, session.State, text)
	default:
		return fmt.Errorf("unknown dialog state %q", session.State)
	}
}

func (m *Machine) input(ctx context.Context, log *zap.Logger, chatID int64, state State, text string) error {
	switch state {
	case StateAwaitingMinSalary:
		m.setSalary(ctx, log, chatID, text, m.store.SetMinSalary)
	case StateAwaitingMaxSalary:
		m.setSalary(ctx, log, chatID, text, m.store.SetMaxSalary)
	case StateAwaitingCity:
		m.setCity(ctx, chatID, text)
	case StateAwaitingKeyword:
		m.addKeyword(ctx, chatID, text)
	default:
		return fmt.Errorf("no input expected in state %q", state)
	}
	return nil
}

func (m *Machine) command(ctx context.Context, log *zap.Logger, traceID string, chatID int64, cmd command, args string, session Session) error {
	switch cmd {
	case cmdStart:
		m.reply(ctx, chatID, msgWelcome+msgHelp)
	case cmdHelp:
		m.reply(ctx, chatID, msgHelp)
	case cmdFilters:
		m.reply(ctx, chatID, m.store.Get(chatID).Description())
	case cmdSearch:
		m.search(ctx, log, chatID, search.ByDate)
	case cmdTop:
		m.search(ctx, log, chatID, search.BySalary)
	case cmdSetMinSalary:
		if args != "" {
			m.setSalary(ctx, log, chatID, args, m.store.SetMinSalary)
			return nil
		}
		m.await(ctx, chatID, traceID, StateAwaitingMinSalary, msgAskMinSalary)
	case cmdSetMaxSalary:
		if args != "" {
			m.setSalary(ctx, log, chatID, args, m.store.SetMaxSalary)
			return nil
		}
		m.await(ctx, chatID, traceID, StateAwaitingMaxSalary, msgAskMaxSalary)
	case cmdSetCity:
		if args != "" {
			m.setCity(ctx, chatID, args)
			return nil
		}
		m.await(ctx, chatID, traceID, StateAwaitingCity, msgAskCity)
	case cmdAddKeyword:
		if args != "" {
			m.addKeyword(ctx, chatID, args)
			return nil
		}
		m.await(ctx, chatID, traceID, StateAwaitingKeyword, askKeyword())
	case cmdRemoveKeyword:
		m.removeKeyword(ctx, chatID, args)
	case cmdClearKeywords:
		m.saved(ctx, chatID, m.store.ClearKeywords(ctx, chatID))
	case cmdRemote:
		m.saved(ctx, chatID, m.store.Update(ctx, chatID, func(f *filter.Filter) {
			f.RemoteOnly = !f.RemoteOnly
		}))
	case cmdNoAgencies:
		m.saved(ctx, chatID, m.store.Update(ctx, chatID, func(f *filter.Filter) {
			f.ExcludeAgencies = !f.ExcludeAgencies
		}))
	case cmdExperience:
		m.setExperience(ctx, log, chatID, args)
	case cmdSources:
		m.setSources(ctx, chatID, args)
	case cmdSubscribe:
		m.store.SetSubscribed(ctx, chatID, true)
		m.reply(ctx, chatID, msgSubscribed)
	case cmdUnsubscribe:
		m.store.SetSubscribed(ctx, chatID, false)
		m.reply(ctx, chatID, msgUnsubscribed)
	case cmdReset:
		m.reply(ctx, chatID, msgReset+m.store.Reset(ctx, chatID).Description())
	case cmdCancel:
		m.sessions.Reset(chatID)
		if session.State == StateNone {
			m.reply(ctx, chatID, msgNothingToDo)
			return nil
		}
		m.reply(ctx, chatID, msgCancelled)
	default:
		return fmt.Errorf("unhandled command %d", cmd)
	}
	return nil
}

func (m *Machine) await(ctx context.Context, chatID int64, traceID string, state State, prompt string) {
	m.sessions.Set(chatID, Session{State: state, TempData: traceID})
	m.reply(ctx, chatID, prompt)
}

func (m *Machine) setSalary(ctx context.Context, log *zap.Logger, chatID int64, text string,
	set func(ctx context.Context, chatID int64, v *int) *filter.Filter,
) {
	value, err := parseAmount(text)
	if err != nil {
		log.Info("rejected salary input", zap.String("input", utils.Preview(text, 64)), zap.Error(err))
		m.reply(ctx, chatID, msgInvalidSalary)
		return
	}
	m.saved(ctx, chatID, set(ctx, chatID, &value))
}

// setCity stores the city. "-" and empty input clear it.
func (m *Machine) setCity(ctx context.Context, chatID int64, text string) {
	city := strings.TrimSpace(text)
	if city == "-" {
		city = ""
	}
	m.saved(ctx, chatID, m.store.SetCity(ctx, chatID, city))
}

func (m *Machine) addKeyword(ctx context.Context, chatID int64, text string) {
	keyword := strings.TrimSpace(text)
	if keyword == "" {
		m.reply(ctx, chatID, msgEmptyKeyword)
		return
	}
	m.saved(ctx, chatID, m.store.AddKeyword(ctx, chatID, utils.Lower(keyword)))
}

func (m *Machine) removeKeyword(ctx context.Context, chatID int64, args string) {
	current := m.store.Get(chatID)
	if args == "" {
		m.reply(ctx, chatID, keywordsHelp(current.Keywords))
		return
	}

	keyword := utils.Lower(args)
	if !slices.Contains(current.Keywords, keyword) {
		m.reply(ctx, chatID, msgKeywordMissing)
		return
	}
	m.saved(ctx, chatID, m.store.RemoveKeyword(ctx, chatID, keyword))
}

func (m *Machine) setExperience(ctx context.Context, log *zap.Logger, chatID int64, args string) {
	if args == "" {
		m.reply(ctx, chatID, msgExperienceHelp)
		return
	}

	if lower := utils.Lower(args); lower == "off" || lower == "выкл" {
		m.saved(ctx, chatID, m.store.SetMinExperience(ctx, chatID, nil))
		return
	}

	years, err := strconv.Atoi(args)
	if err != nil || years < 0 {
		log.Info("rejected experience input", zap.String("input", utils.Preview(args, 64)), zap.Error(errInvalidExperience))
		m.reply(ctx, chatID, msgInvalidExperience)
		return
	}
	m.saved(ctx, chatID, m.store.SetMinExperience(ctx, chatID, &years))
}

func (m *Machine) setSources(ctx context.Context, chatID int64, args string) {
	if args == "" {
		m.reply(ctx, chatID, sourcesHelp(m.store.Get(chatID).Sources))
		return
	}

	tokens := strings.FieldsFunc(args, func(r rune) bool { return r == ' ' || r == ',' })
	if len(tokens) == 1 && utils.Lower(tokens[0]) == "all" {
		m.saved(ctx, chatID, m.store.SetSources(ctx, chatID, posting.AllSources))
		return
	}

	sources := make([]posting.Source, 0, len(tokens))
	for _, token := range tokens {
		src, err := posting.ParseSource(token)
		if err != nil {
			m.reply(ctx, chatID, "❌ "+html.EscapeString(err.Error())+"\n"+msgSourcesHelp)
			return
		}
		sources = append(sources, src)
	}
	m.saved(ctx, chatID, m.store.SetSources(ctx, chatID, sources))
}

func (m *Machine) search(ctx context.Context, log *zap.Logger, chatID int64, order search.Order) {
	if m.searcher == nil {
		m.reply(ctx, chatID, msgSearchUnavailable)
		return
	}

	m.reply(ctx, chatID, msgSearching)

	found, err := m.searcher.Search(ctx, chatID, order)
	if err != nil {
		log.Error("search failed", zap.Error(err))
		m.reply(ctx, chatID, msgSearchFailed)
		return
	}

	if len(found) == 0 {
		m.reply(ctx, chatID, msgNoResults)
		return
	}

	m.reply(ctx, chatID, foundHeader(len(found)))
	for _, p := range found {
		m.reply(ctx, chatID, posting.Format(p))
	}
}

func (m *Machine) saved(ctx context.Context, chatID int64, f *filter.Filter) {
	m.reply(ctx, chatID, msgSaved+f.Description())
}

func (m *Machine) reply(ctx context.Context, chatID int64, text string) {
	m.sender.SendMessage(ctx, chatID, text)
}

// parseAmount accepts a non-negative integer, spaces between digit groups included.
func parseAmount(text string) (int, error) {
	digits := strings.Join(strings.Fields(text), "")
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidSalary, text)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %d", errInvalidSalary, value)
	}
	return value, nil
}

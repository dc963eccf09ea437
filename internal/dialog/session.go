package dialog

import "sync"

// State is the conversational state of a chat.
type State string

const (
	StateNone              State = "NONE"
	StateAwaitingMinSalary State = "AWAITING_MIN_SALARY"
	StateAwaitingMaxSalary State = "AWAITING_MAX_SALARY"
	StateAwaitingCity      State = "AWAITING_CITY"
	StateAwaitingKeyword   State = "AWAITING_KEYWORD"
)

// Session is the ephemeral dialog state of one chat. TempData holds the trace
// id of the update that asked for the pending input.
type Session struct {
	State    State
	TempData string
}

// Sessions is a keyed store of dialog sessions. A chat without an entry is in StateNone.
type Sessions struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[int64]Session)}
}

func (s *Sessions) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[chatID]
	if !ok {
		return Session{State: StateNone}
	}
	return session
}

func (s *Sessions) Set(chatID int64, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.State == StateNone {
		delete(s.sessions, chatID)
		return
	}
	s.sessions[chatID] = session
}

func (s *Sessions) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

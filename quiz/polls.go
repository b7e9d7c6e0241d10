package quiz

import (
	"sync"

	"github.com/looplab/fsm"
)

// Poll lifecycle states. There is no way back: once a poll left the
// open state it never accepts votes again.
const (
	StateOpen    = "open"
	StateClosing = "closing"
	StateClosed  = "closed"
)

// Answer is one vote observed on an active poll.
type Answer struct {
	UserID  int64
	Name    string
	Correct bool
}

// ActivePoll correlates a platform-assigned poll id with the correct
// option index chosen at creation time and the votes seen so far.
type ActivePoll struct {
	ChatID        int64
	MessageID     int
	CorrectOption int

	mu      sync.Mutex
	state   *fsm.FSM
	answers []Answer
}

func newActivePoll(chatID int64, messageID, correctOption int) *ActivePoll {
	return &ActivePoll{
		ChatID:        chatID,
		MessageID:     messageID,
		CorrectOption: correctOption,
		state: fsm.NewFSM(
			StateOpen,
			fsm.Events{
				{Name: "close", Src: []string{StateOpen}, Dst: StateClosing},
				{Name: "done", Src: []string{StateClosing}, Dst: StateClosed},
			},
			fsm.Callbacks{},
		),
	}
}

// Record appends a vote. It reports false if the poll no longer
// accepts votes or this user has voted on it already.
func (p *ActivePoll) Record(userID int64, name string, correct bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Current() != StateOpen {
		return false
	}
	for _, a := range p.answers {
		if a.UserID == userID {
			return false
		}
	}

	p.answers = append(p.answers, Answer{UserID: userID, Name: name, Correct: correct})
	return true
}

// Close moves the poll out of the open state. It reports false if
// closure has been triggered before.
func (p *ActivePoll) Close() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Event("close") == nil
}

// Done marks the poll announced.
func (p *ActivePoll) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Event("done")
}

// State returns the current lifecycle state.
func (p *ActivePoll) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Current()
}

// Answers returns a copy of the votes recorded so far.
func (p *ActivePoll) Answers() []Answer {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Answer, len(p.answers))
	copy(out, p.answers)
	return out
}

// ActivePolls is the in-memory poll correlation table. Entries live
// from poll creation until closure evicts them.
type ActivePolls struct {
	mu    sync.RWMutex
	polls map[string]*ActivePoll
}

// NewActivePolls returns an empty table.
func NewActivePolls() *ActivePolls {
	return &ActivePolls{polls: make(map[string]*ActivePoll)}
}

// Register adds a freshly created poll to the table.
func (t *ActivePolls) Register(pollID string, chatID int64, messageID, correctOption int) *ActivePoll {
	p := newActivePoll(chatID, messageID, correctOption)

	t.mu.Lock()
	t.polls[pollID] = p
	t.mu.Unlock()

	return p
}

// Get returns the poll for the given id, or nil when it is unknown.
func (t *ActivePolls) Get(pollID string) *ActivePoll {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.polls[pollID]
}

// Remove evicts the poll from the table. Safe to call twice.
func (t *ActivePolls) Remove(pollID string) {
	t.mu.Lock()
	delete(t.polls, pollID)
	t.mu.Unlock()
}

// Len returns the number of tracked polls.
func (t *ActivePolls) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.polls)
}

package conversation

import (
	"sync"
)

// State is the continuation state stored for one completed answer.
type State struct {
	ContinuationToken string
	Domain            string
	Mode              string
}

// Tracker maps response and conversation identifiers to the continuation
// state needed for multi-turn exchanges. It only manages the opaque
// continuation token the generation service issues; it never calls the
// service itself.
//
// Tracker is safe for concurrent use.
type Tracker struct {
	mu             sync.Mutex
	byResponse     map[string]State
	byConversation map[string]State
	responseOrder  []string
	maxEntries     int
}

// NewTracker creates a Tracker. When maxEntries is positive, the oldest
// response entries are evicted once the map grows past it; otherwise the
// map grows unbounded for the process lifetime.
func NewTracker(maxEntries int) *Tracker {
	return &Tracker{
		byResponse:     make(map[string]State),
		byConversation: make(map[string]State),
		maxEntries:     maxEntries,
	}
}

// Resume looks up the continuation token for a follow-up request. A
// response id takes precedence over a conversation id. An unknown
// identifier degrades gracefully to a fresh context: the returned token is
// empty and conversational is false, never an error. Supplying neither
// identifier starts a fresh context.
func (t *Tracker) Resume(conversationID string, responseID string) (token string, conversational bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if responseID != "" {
		if state, ok := t.byResponse[responseID]; ok {
			return state.ContinuationToken, true
		}
		return "", false
	}
	if conversationID != "" {
		if state, ok := t.byConversation[conversationID]; ok {
			return state.ContinuationToken, true
		}
		return "", false
	}
	return "", false
}

// Record stores the continuation state for a completed answer, keyed by
// its response id and, when supplied, the conversation id.
func (t *Tracker) Record(responseID string, state State, conversationID string) {
	if responseID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.byResponse[responseID]; !exists {
		t.responseOrder = append(t.responseOrder, responseID)
	}
	t.byResponse[responseID] = state
	if conversationID != "" {
		t.byConversation[conversationID] = state
	}

	if t.maxEntries > 0 {
		for len(t.byResponse) > t.maxEntries && len(t.responseOrder) > 0 {
			oldest := t.responseOrder[0]
			t.responseOrder = t.responseOrder[1:]
			delete(t.byResponse, oldest)
		}
	}
}

// Len returns the number of tracked response entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byResponse)
}

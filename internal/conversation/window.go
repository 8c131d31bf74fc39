// Package conversation keeps a bounded per-caller history of chat turns. The
// stored window deliberately holds more turns than any single model request
// uses, so later requests can still see slightly older context.
package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is how many turns the log retains per caller.
const DefaultCapacity = 10

// Speaker identifies which side of the exchange produced a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is a single utterance in a caller's conversation.
type Turn struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// window is a fixed-capacity ring of turns. Appending past capacity
// overwrites the oldest slot, so the length bound holds structurally instead
// of relying on trimming after the fact.
type window struct {
	mu    sync.Mutex
	turns []Turn
	head  int
	size  int
}

func (w *window) append(t Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size < len(w.turns) {
		w.turns[(w.head+w.size)%len(w.turns)] = t
		w.size++
		return
	}

	w.turns[w.head] = t
	w.head = (w.head + 1) % len(w.turns)
}

func (w *window) recent(n int) []Turn {
	w.mu.Lock()
	defer w.mu.Unlock()

	if n > w.size {
		n = w.size
	}
	out := make([]Turn, 0, n)
	for i := w.size - n; i < w.size; i++ {
		out = append(out, w.turns[(w.head+i)%len(w.turns)])
	}
	return out
}

func (w *window) length() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Log stores bounded conversation history partitioned by caller. Each caller
// has its own window lock; the outer lock only guards window creation.
type Log struct {
	capacity int

	mu      sync.RWMutex
	windows map[string]*window
}

// NewLog returns a Log retaining up to capacity turns per caller.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		windows:  make(map[string]*window),
	}
}

func (l *Log) window(callerID string) *window {
	l.mu.RLock()
	w, ok := l.windows[callerID]
	l.mu.RUnlock()
	if ok {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.windows[callerID]; ok {
		return w
	}
	w = &window{turns: make([]Turn, l.capacity)}
	l.windows[callerID] = w
	return w
}

// Append records a turn for the caller, evicting the oldest once the window
// is full. Missing audit fields are filled in.
func (l *Log) Append(callerID string, t Turn) Turn {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	l.window(callerID).append(t)
	return t
}

// Context returns up to maxTurns of the caller's most recent turns, oldest
// first. It never mutates stored history.
func (l *Log) Context(callerID string, maxTurns int) []Turn {
	if maxTurns <= 0 {
		return nil
	}

	l.mu.RLock()
	w, ok := l.windows[callerID]
	l.mu.RUnlock()
	if !ok {
		return nil
	}
	return w.recent(maxTurns)
}

// Len reports how many turns are stored for the caller.
func (l *Log) Len(callerID string) int {
	l.mu.RLock()
	w, ok := l.windows[callerID]
	l.mu.RUnlock()
	if !ok {
		return 0
	}
	return w.length()
}

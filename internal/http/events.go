package http

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/zeeguu/internal/entities"
)

// DefaultEventCapacity is how many events the recorder keeps.
const DefaultEventCapacity = 256

// Event types published on the feed.
const (
	EventLoginDialog         = "login_dialog"
	EventCreateAccountDialog = "create_account_dialog"
	EventLoginSucceeded      = "login_succeeded"
	EventTranslation         = "translation"
	EventHighlight           = "highlight"
	EventError               = "error"
	EventMessage             = "message"
	EventDataChanged         = "data_changed"
	EventBookmark            = "bookmark"
	EventDifficulties        = "difficulties"
	EventLearnabilities      = "learnabilities"
	EventContents            = "contents"
)

// Event is one manager notification.
type Event struct {
	Seq  uint64    `json:"seq"`
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// EventRecorder implements session.Callbacks by keeping the most recent
// notifications in a ring buffer, so HTTP clients can poll for the outcome
// of the operations they submitted.
type EventRecorder struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	next     int
	lastSeq  uint64
	now      func() time.Time
}

// NewEventRecorder creates a recorder keeping up to capacity events.
func NewEventRecorder(capacity int) *EventRecorder {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return &EventRecorder{
		events:   make([]Event, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Since returns the retained events with a sequence number above seq, oldest
// first.
func (r *EventRecorder) Since(seq uint64) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0, len(r.events))
	for i := 0; i < len(r.events); i++ {
		ev := r.events[(r.next+i)%len(r.events)]
		if ev.Seq > seq {
			out = append(out, ev)
		}
	}
	return out
}

// LastSeq returns the sequence number of the newest event, or 0.
func (r *EventRecorder) LastSeq() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSeq
}

func (r *EventRecorder) record(typ string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastSeq++
	ev := Event{Seq: r.lastSeq, Type: typ, Time: r.now(), Data: data}
	if len(r.events) < r.capacity {
		r.events = append(r.events, ev)
		return
	}
	r.events[r.next] = ev
	r.next = (r.next + 1) % r.capacity
}

func (r *EventRecorder) ShowLoginDialog(title, email string) {
	r.record(EventLoginDialog, gin.H{"title": title, "email": email})
}

func (r *EventRecorder) ShowCreateAccountDialog(message, username, email string) {
	r.record(EventCreateAccountDialog, gin.H{"message": message, "username": username, "email": email})
}

func (r *EventRecorder) LoginSucceeded() {
	r.record(EventLoginSucceeded, nil)
}

func (r *EventRecorder) SetTranslation(translation string) {
	r.record(EventTranslation, gin.H{"translation": translation})
}

func (r *EventRecorder) Highlight(word string) {
	r.record(EventHighlight, gin.H{"word": word})
}

func (r *EventRecorder) DisplayError(message string, transient bool) {
	r.record(EventError, gin.H{"message": message, "transient": transient})
}

func (r *EventRecorder) DisplayMessage(message string) {
	r.record(EventMessage, gin.H{"message": message})
}

func (r *EventRecorder) NotifyDataChanged(changed bool) {
	r.record(EventDataChanged, gin.H{"changed": changed})
}

func (r *EventRecorder) BookmarkWord(id string) {
	r.record(EventBookmark, gin.H{"id": id})
}

func (r *EventRecorder) SetDifficulties(difficulties []entities.Difficulty) {
	r.record(EventDifficulties, difficulties)
}

func (r *EventRecorder) SetLearnabilities(learnabilities []entities.Learnability) {
	r.record(EventLearnabilities, learnabilities)
}

func (r *EventRecorder) SetContents(contents []entities.Content) {
	r.record(EventContents, contents)
}

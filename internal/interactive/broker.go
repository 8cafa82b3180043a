// Package interactive implements C6: pairing a suspended chat-completion
// request with a human operator's reply, FIFO pending-list exposure, and an
// SSE-framed event feed for connected operator streams.
package interactive

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reply is what an operator posts back for a pending request.
type Reply struct {
	Content      string
	Reasoning    string
	FinishReason string
}

// Pending is one suspended request as exposed to operators.
type Pending struct {
	ID        string
	Model     string
	Messages  []Message
	Stream    bool
	CreatedAt time.Time
	Deadline  time.Time
}

// Message is the minimal shape an operator needs to see to answer a request.
type Message struct {
	Role    string
	Content string
}

// Event is one entry on the broadcast feed.
type Event struct {
	Type      string    `json:"type"` // queued | replied | timeout
	ID        string    `json:"id"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type entry struct {
	pending Pending
	sink    chan Reply
	timer   *time.Timer
	replied bool
}

// Broker owns the pending table and the operator event fan-out.
type Broker struct {
	mu      sync.Mutex
	order   []string // arrival order, for FIFO listing
	entries map[string]*entry

	subMu sync.Mutex
	subs  map[int]chan Event
	nextSub int
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		entries: make(map[string]*entry),
		subs:    make(map[int]chan Event),
	}
}

// Register enqueues a new suspended request and broadcasts "queued". It
// returns the sink channel the caller must receive exactly one Reply from,
// and the deadline timer is owned by the broker from this point forward.
func (b *Broker) Register(model string, messages []Message, stream bool, timeout time.Duration, fallback Reply) (id string, sink <-chan Reply) {
	id = uuid.NewString()
	now := time.Now()
	deadline := now.Add(timeout)

	ch := make(chan Reply, 1)
	e := &entry{
		pending: Pending{
			ID: id, Model: model, Messages: messages, Stream: stream,
			CreatedAt: now, Deadline: deadline,
		},
		sink: ch,
	}

	b.mu.Lock()
	b.entries[id] = e
	b.order = append(b.order, id)
	b.mu.Unlock()

	e.timer = time.AfterFunc(timeout, func() {
		b.resolve(id, fallback, "timeout")
	})

	b.broadcast(Event{Type: "queued", ID: id, Model: model, CreatedAt: now})
	return id, ch
}

// Reply posts an operator's answer for a pending request. It returns false
// if the id is unknown (already resolved, or never existed).
func (b *Broker) Reply(id string, reply Reply) bool {
	return b.resolve(id, reply, "replied")
}

// Cancel removes a pending entry without broadcasting, used when the
// inbound client disconnects before an operator answers.
func (b *Broker) Cancel(id string) {
	b.mu.Lock()
	e, ok := b.entries[id]
	if ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(b.entries, id)
		b.removeFromOrder(id)
	}
	b.mu.Unlock()
}

func (b *Broker) resolve(id string, reply Reply, eventType string) bool {
	b.mu.Lock()
	e, ok := b.entries[id]
	if !ok || e.replied {
		b.mu.Unlock()
		return false
	}
	e.replied = true
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(b.entries, id)
	b.removeFromOrder(id)
	model := e.pending.Model
	b.mu.Unlock()

	e.sink <- reply
	close(e.sink)
	b.broadcast(Event{Type: eventType, ID: id, Model: model})
	return true
}

func (b *Broker) removeFromOrder(id string) {
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			return
		}
	}
}

// List returns the pending table in FIFO arrival order.
func (b *Broker) List() []Pending {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Pending, 0, len(b.order))
	for _, id := range b.order {
		if e, ok := b.entries[id]; ok {
			out = append(out, e.pending)
		}
	}
	return out
}

// Subscribe registers a new operator event stream. The returned channel is
// bounded; a slow subscriber drops its oldest buffered event rather than
// blocking resolve/register calls.
func (b *Broker) Subscribe() (ch <-chan Event, unsubscribe func()) {
	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	c := make(chan Event, 64)
	b.subs[id] = c
	b.subMu.Unlock()

	return c, func() {
		b.subMu.Lock()
		delete(b.subs, id)
		b.subMu.Unlock()
	}
}

func (b *Broker) broadcast(ev Event) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, c := range b.subs {
		select {
		case c <- ev:
		default:
			// drop-oldest: make room, then deliver the new event.
			select {
			case <-c:
			default:
			}
			select {
			case c <- ev:
			default:
			}
		}
	}
}
